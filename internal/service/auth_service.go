package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"

	"taskit/internal/model"
	"taskit/internal/repository"
)

// GenerateIdentity derives the stable user id from username and email.
func GenerateIdentity(username, email string) string {
	sum := sha256.Sum256([]byte(username + ":" + email))
	return hex.EncodeToString(sum[:])
}

// AuthService registers users and checks their credentials.
type AuthService struct {
	users  *repository.UserRepository
	hasher PasswordHasher
}

func NewAuthService(users *repository.UserRepository, hasher PasswordHasher) *AuthService {
	if hasher == nil {
		hasher = SHA256Hasher{}
	}
	return &AuthService{users: users, hasher: hasher}
}

// Register stores a new user and returns its id. Email is the login key and
// must be unused.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (string, error) {
	if blank(username) || blank(email) || password == "" {
		return "", ErrMissingField
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return "", errors.Wrap(err, "register")
	}
	if exists {
		return "", ErrDuplicateUser
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}

	user := model.User{
		UserID:   GenerateIdentity(username, email),
		Username: username,
		Email:    email,
		Password: digest,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, repository.ErrDuplicate) {
			return "", ErrDuplicateUser
		}
		return "", errors.Wrap(err, "register")
	}

	return user.UserID, nil
}

// Authenticate returns the user owning email when password matches.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	if blank(email) || password == "" {
		return nil, ErrMissingField
	}

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, errors.Wrap(err, "authenticate")
	}

	if !s.hasher.Verify(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
