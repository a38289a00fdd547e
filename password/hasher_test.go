package password

import "testing"

func TestHasherVerifiesLegacyBcrypt(t *testing.T) {
	h, err := New(testConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	legacy, err := NewBcrypt(4).Hash("legacy-pass")
	if err != nil {
		t.Fatalf("bcrypt hash: %v", err)
	}

	ok, err := h.Verify("legacy-pass", legacy)
	if err != nil || !ok {
		t.Fatalf("expected legacy hash to verify, ok=%v err=%v", ok, err)
	}
	ok, err = h.Verify("other-pass", legacy)
	if err != nil || ok {
		t.Fatalf("expected mismatch, ok=%v err=%v", ok, err)
	}

	needs, err := h.NeedsUpgrade(legacy)
	if err != nil || !needs {
		t.Fatalf("expected bcrypt hash to need upgrade, needs=%v err=%v", needs, err)
	}
}

func TestHasherWritesArgon2(t *testing.T) {
	h, err := New(testConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	hash, err := h.Hash("fresh-pass")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !isArgon2Hash(hash) {
		t.Fatalf("expected argon2id hash, got %q", hash)
	}

	needs, err := h.NeedsUpgrade(hash)
	if err != nil || needs {
		t.Fatalf("expected fresh hash to be current, needs=%v err=%v", needs, err)
	}
}

func TestHasherUnknownFormat(t *testing.T) {
	h, err := New(testConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if _, err := h.Verify("x", "plain-text"); err != ErrUnknownHashFormat {
		t.Fatalf("expected ErrUnknownHashFormat, got %v", err)
	}
	if _, err := h.NeedsUpgrade("plain-text"); err != ErrUnknownHashFormat {
		t.Fatalf("expected ErrUnknownHashFormat, got %v", err)
	}
}
