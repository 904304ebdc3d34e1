// Package auth issues and verifies the signed bearer tokens handed out on
// register, login and refresh. Tokens are HS256 JWTs; the server keeps no
// session state, so validity depends only on signature and expiry.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptySecret is returned by NewAuthority when no signing key is given.
var ErrEmptySecret = errors.New("signing secret must not be empty")

// UserClaims is the identity snapshot embedded in a token.
type UserClaims struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Claims is the full token payload: {"user":{...},"iat":..,"exp":..}.
type Claims struct {
	jwt.RegisteredClaims
	User UserClaims `json:"user"`
}

// Authority signs and verifies tokens with a single process-wide secret.
// It is immutable after construction and safe for concurrent use.
type Authority struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Authority)

// WithClock replaces time.Now for both issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(a *Authority) {
		a.now = now
	}
}

func NewAuthority(secret []byte, ttl time.Duration, opts ...Option) (*Authority, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	a := &Authority{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// TTL returns the lifetime given to issued tokens.
func (a *Authority) TTL() time.Duration {
	return a.ttl
}

// Issue signs a token carrying the account's id, username and email.
func (a *Authority) Issue(account *models.Account) (string, error) {
	now := a.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
		User: UserClaims{
			ID:    account.ID,
			Name:  account.Username,
			Email: account.Email,
		},
	})

	tokenString, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// Verify checks the signature first and expiry second. It returns
// common.ErrTokenExpired only for correctly signed tokens past their expiry;
// every other failure is common.ErrTokenSignatureInvalid.
func (a *Authority) Verify(tokenString string) (*UserClaims, error) {
	if tokenString == "" {
		return nil, common.ErrMissingToken
	}

	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrTokenSignatureInvalid, err)
	}

	if !token.Valid || claims.User.ID == "" {
		return nil, common.ErrTokenSignatureInvalid
	}

	return &claims.User, nil
}
