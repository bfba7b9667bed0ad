// Package password hashes and verifies visitor passwords with bcrypt.
package password

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/visitorhub/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores input past 72 bytes; longer passwords are rejected so two
// passwords sharing a prefix never verify against each other.
const maxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// Hasher produces salted, self-describing bcrypt hashes. The zero value is
// not usable; use NewHasher.
type Hasher struct {
	cost  int
	dummy []byte
}

// NewHasher returns a Hasher with the given bcrypt work factor.
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", cost)
	}

	secret, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, fmt.Errorf("dummy secret: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}

	return &Hasher{cost: cost, dummy: dummy}, nil
}

// Hash returns a fresh salted hash of plain. Hashing the same input twice
// yields different outputs.
func (h *Hasher) Hash(plain string) (string, error) {
	if len(plain) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

// Verify reports whether plain matches hash. A malformed hash verifies as
// false rather than failing.
func (h *Hasher) Verify(plain, hash string) bool {
	if len(plain) > maxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// VerifyDummy spends the same work as a real Verify and always reports
// false. Callers use it when the account does not exist so that response
// time does not reveal which usernames are registered.
func (h *Hasher) VerifyDummy(plain string) bool {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plain))
	return false
}
