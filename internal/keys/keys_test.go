package keys

import (
	"strings"
	"testing"
)

func TestKeysAreNamespaced(t *testing.T) {
	s := New("")

	got := map[string]string{
		"verification": s.Verification("same"),
		"reset":        s.Reset("same"),
		"refresh":      s.Refresh("same"),
		"index":        s.MemberIndex("same"),
		"rate":         s.RateLimit("x", "same"),
	}

	seen := map[string]string{}
	for kind, key := range got {
		if !strings.HasPrefix(key, DefaultPrefix+":") {
			t.Fatalf("%s key %q missing default prefix", kind, key)
		}
		if other, ok := seen[key]; ok {
			t.Fatalf("%s and %s collide on %q", kind, other, key)
		}
		seen[key] = kind
	}
}

func TestKeysAreInjective(t *testing.T) {
	s := New("app")

	if s.Refresh("abc") == s.Refresh("abd") {
		t.Fatal("distinct tokens mapped to the same key")
	}
	if s.Verification("a@x.io") == s.Verification("b@x.io") {
		t.Fatal("distinct emails mapped to the same key")
	}
	if got, want := s.MemberIndex("42"), "app:ms:42"; got != want {
		t.Fatalf("MemberIndex = %q, want %q", got, want)
	}
}

func TestZeroSchemeUsesDefaultPrefix(t *testing.T) {
	var s Scheme
	if got, want := s.Reset("tok"), "ba:pr:tok"; got != want {
		t.Fatalf("Reset = %q, want %q", got, want)
	}
}
