package internal

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/google/uuid"
)

// NewOTP returns a uniformly random decimal code of exactly digits characters,
// leading zeros kept. A nil reader selects crypto/rand.
func NewOTP(r io.Reader, digits int) (string, error) {
	if digits < 4 || digits > 10 {
		return "", errors.New("invalid otp digits")
	}
	if r == nil {
		r = rand.Reader
	}

	upper := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(r, upper)
	if err != nil {
		return "", err
	}

	otp := fmt.Sprintf("%0*d", digits, n)
	if len(otp) != digits {
		return "", errors.New("invalid otp generation length")
	}
	return otp, nil
}

// NewOpaqueToken returns a version-4 UUID string (122 random bits).
func NewOpaqueToken(r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	id, err := uuid.NewRandomFromReader(r)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// IsOpaqueToken reports whether s has the canonical UUID shape.
func IsOpaqueToken(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
