// Package keys maps logical credential identities to store keys.
//
// Every key is <prefix>:<namespace>:<id>. Namespaces are fixed two-letter
// literals and ids are appended raw, so two different (namespace, id) pairs
// never produce the same key.
package keys

import "strings"

// DefaultPrefix is used when Scheme.Prefix is empty.
const DefaultPrefix = "ba"

const (
	nsVerification = "vc"
	nsReset        = "pr"
	nsRefresh      = "rt"
	nsMemberIndex  = "ms"
	nsRateLimit    = "rl"
)

// Scheme builds keys under a deployment prefix.
type Scheme struct {
	Prefix string
}

// New returns a Scheme, defaulting an empty prefix.
func New(prefix string) Scheme {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Scheme{Prefix: prefix}
}

// Verification is keyed by email: one live code per address.
func (s Scheme) Verification(email string) string {
	return s.join(nsVerification, email)
}

// Reset is keyed by the opaque reset token.
func (s Scheme) Reset(token string) string {
	return s.join(nsReset, token)
}

// Refresh is keyed by the opaque refresh token.
func (s Scheme) Refresh(token string) string {
	return s.join(nsRefresh, token)
}

// MemberIndex is the set of live refresh tokens for one member.
func (s Scheme) MemberIndex(memberID string) string {
	return s.join(nsMemberIndex, memberID)
}

// RateLimit is a fixed-window counter for scope and subject.
func (s Scheme) RateLimit(scope, subject string) string {
	return s.join(nsRateLimit, scope+":"+subject)
}

func (s Scheme) join(ns, id string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	var b strings.Builder
	b.Grow(len(prefix) + len(ns) + len(id) + 2)
	b.WriteString(prefix)
	b.WriteByte(':')
	b.WriteString(ns)
	b.WriteByte(':')
	b.WriteString(id)
	return b.String()
}
