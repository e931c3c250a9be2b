package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns passwords into stored digests and checks them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(digest, password string) bool
}

// NewPasswordHasher returns the hasher registered under name ("sha256" or
// "bcrypt"). A database must keep using the hasher it was populated with.
func NewPasswordHasher(name string) (PasswordHasher, error) {
	switch name {
	case "", "sha256":
		return SHA256Hasher{}, nil
	case "bcrypt":
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, errors.Errorf("unknown password hasher %q", name)
	}
}

// SHA256Hasher stores the unsalted hex sha256 of the password.
// Fast and unsalted: compatible with existing taskit databases, weak
// against offline guessing.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Verify(digest, password string) bool {
	want, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(want)) == 1
}

// BcryptHasher stores salted bcrypt hashes.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (BcryptHasher) Verify(digest, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
