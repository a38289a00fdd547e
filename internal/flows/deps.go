package flows

// Deps groups flow dependency sets. The root engine builds this once and
// delegates each request method to the matching flow.
type Deps struct {
	SignUp        SignUpDeps
	SignIn        SignInDeps
	Refresh       RefreshDeps
	SignOut       SignOutDeps
	Verification  VerificationDeps
	PasswordReset PasswordResetDeps
}
