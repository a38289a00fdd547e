package internaldefs

import (
	"github.com/MrEthical07/boardauth"
)

type CounterDef struct {
	ID   boardauth.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   boardauth.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: boardauth.MetricSignUpSuccess, Name: "boardauth_sign_up_success_total", Help: "Members registered."},
	{ID: boardauth.MetricSignUpFailure, Name: "boardauth_sign_up_failure_total", Help: "Rejected sign-up attempts."},
	{ID: boardauth.MetricSignInSuccess, Name: "boardauth_sign_in_success_total", Help: "Successful sign-ins."},
	{ID: boardauth.MetricSignInFailure, Name: "boardauth_sign_in_failure_total", Help: "Rejected sign-ins."},
	{ID: boardauth.MetricRateLimitHit, Name: "boardauth_rate_limit_hit_total", Help: "Requests denied by per-email limits."},
	{ID: boardauth.MetricRefreshSuccess, Name: "boardauth_refresh_success_total", Help: "Successful refresh-token rotations."},
	{ID: boardauth.MetricRefreshFailure, Name: "boardauth_refresh_failure_total", Help: "Failed refresh-token rotations."},
	{ID: boardauth.MetricSessionCreated, Name: "boardauth_session_created_total", Help: "Refresh-token sessions created."},
	{ID: boardauth.MetricSignOut, Name: "boardauth_sign_out_total", Help: "Single-session sign-outs."},
	{ID: boardauth.MetricSignOutAll, Name: "boardauth_sign_out_all_total", Help: "Sign-outs from every device."},
	{ID: boardauth.MetricVerificationCodeIssued, Name: "boardauth_verification_code_issued_total", Help: "Verification codes issued and emailed."},
	{ID: boardauth.MetricVerificationCodeFailure, Name: "boardauth_verification_code_failure_total", Help: "Verification code requests that failed."},
	{ID: boardauth.MetricPasswordResetRequest, Name: "boardauth_password_reset_request_total", Help: "Forgot-password requests."},
	{ID: boardauth.MetricPasswordResetSuccess, Name: "boardauth_password_reset_success_total", Help: "Completed password resets."},
	{ID: boardauth.MetricPasswordResetFailure, Name: "boardauth_password_reset_failure_total", Help: "Rejected password resets."},
	{ID: boardauth.MetricPasswordRehash, Name: "boardauth_password_rehash_total", Help: "Legacy password hashes upgraded at sign-in."},
	{ID: boardauth.MetricEmailDeliveryFailure, Name: "boardauth_email_delivery_failure_total", Help: "Emails the mailer failed to accept."},
	{ID: boardauth.MetricStoreUnavailable, Name: "boardauth_store_unavailable_total", Help: "Operations failed by credential store errors."},
}

var HistogramDefs = []HistogramDef{
	{ID: boardauth.MetricRefreshLatency, Name: "boardauth_refresh_latency_seconds", Help: "Refresh-token rotation latency."},
}

// HistogramBounds are the upper bounds, in seconds, of the first seven
// buckets; the eighth is +Inf.
var HistogramBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to eight buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
