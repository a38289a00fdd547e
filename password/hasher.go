package password

import "errors"

// ErrUnknownHashFormat is returned when a stored hash matches no supported scheme.
var ErrUnknownHashFormat = errors.New("unknown password hash format")

// Hasher writes Argon2id hashes and verifies both Argon2id and legacy bcrypt hashes.
type Hasher struct {
	current *Argon2
	legacy  *Bcrypt
}

// New returns a Hasher writing with cfg.
func New(cfg Config) (*Hasher, error) {
	a, err := NewArgon2(cfg)
	if err != nil {
		return nil, err
	}
	return &Hasher{current: a, legacy: NewBcrypt(0)}, nil
}

func (h *Hasher) Hash(password string) (string, error) {
	return h.current.Hash(password)
}

// Verify dispatches on the stored hash prefix.
func (h *Hasher) Verify(password, encodedHash string) (bool, error) {
	switch {
	case isArgon2Hash(encodedHash):
		return h.current.Verify(password, encodedHash)
	case isBcryptHash(encodedHash):
		return h.legacy.Verify(password, encodedHash)
	default:
		return false, ErrUnknownHashFormat
	}
}

// NeedsUpgrade is true for every bcrypt hash and for Argon2id hashes with
// weaker parameters.
func (h *Hasher) NeedsUpgrade(encodedHash string) (bool, error) {
	switch {
	case isArgon2Hash(encodedHash):
		return h.current.NeedsUpgrade(encodedHash)
	case isBcryptHash(encodedHash):
		return true, nil
	default:
		return false, ErrUnknownHashFormat
	}
}
