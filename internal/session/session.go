package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrInvalidToken covers malformed, expired, forged and revoked tokens.
var ErrInvalidToken = errors.New("invalid session token")

// Claims identify the signed-in user.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token.
func (c *Claims) UserID() string { return c.Subject }

// Issuer signs and verifies HS256 session tokens.
type Issuer struct {
	secret   []byte
	ttl      time.Duration
	denylist Denylist
	now      func() time.Time
}

func NewIssuer(secret []byte, ttl time.Duration, denylist Denylist) *Issuer {
	if denylist == nil {
		denylist = NewMemoryDenylist()
	}
	return &Issuer{secret: secret, ttl: ttl, denylist: denylist, now: time.Now}
}

// Issue returns a signed token for the user and its expiry.
func (i *Issuer) Issue(userID, username string) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign session token")
	}
	return signed, expiresAt, nil
}

// Parse verifies a token and returns its claims.
func (i *Issuer) Parse(ctx context.Context, token string) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	revoked, err := i.denylist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, errors.Wrap(err, "check revocation")
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// Revoke invalidates the token for the rest of its lifetime.
func (i *Issuer) Revoke(ctx context.Context, claims *Claims) error {
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(i.now())
	}
	if ttl <= 0 {
		return nil
	}
	return errors.Wrap(i.denylist.Add(ctx, claims.ID, ttl), "revoke session")
}
