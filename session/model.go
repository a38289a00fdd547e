package session

// Record is the stored state behind one refresh token.
type Record struct {
	MemberID string
	Role     string
	IssuedAt int64
}

// TokenPair is what a sign-in or refresh hands back to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
