// internal/auth/token.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
)

const (
	// KeyID is written to the kid header and required on verification.
	KeyID  = "v1"
	Issuer = "libraxpert"
)

var ErrInvalidToken = errors.New("invalid or expired access token")

// Claims carries the role next to the registered claims. The subject is the user ID.
type Claims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 access tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate returns a signed token for user and its expiry time.
func (t *Tokens) Generate(user *model.User) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)

	claims := &Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = KeyID

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, key ID, issuer and expiry and returns the token's actor.
func (t *Tokens) Verify(accessToken string) (model.Actor, error) {
	if accessToken == "" {
		return model.Actor{}, ErrInvalidToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (any, error) {
		if kid, ok := token.Header["kid"].(string); !ok || kid != KeyID {
			return nil, errors.New("unexpected key id")
		}
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return model.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.Actor{}, fmt.Errorf("%w: malformed subject", ErrInvalidToken)
	}
	return model.Actor{UserID: userID, Role: claims.Role}, nil
}
