package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer   = "lsa-api"
	tokenAudience = "lsa-cms"
)

var (
	ErrInvalidToken      = errors.New("invalid or expired token")
	ErrEmptySecret       = errors.New("token signing secret is empty")
	ErrUnsupportedAlg    = errors.New("unsupported token signing algorithm")
	ErrInvalidTokenTTL   = errors.New("token ttl must be positive")
	ErrEmptyTokenSubject = errors.New("token subject is empty")
)

// Claims represents the JWT claims carried by an access token. Username and
// IsAdmin reflect the account at issuance time and are advisory only.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
	IsAdmin  bool   `json:"is_admin"`
}

// TokenExtras holds the advisory claims attached next to the subject.
type TokenExtras struct {
	Username string
	IsAdmin  bool
}

// TokenCodec issues and verifies HMAC-signed access tokens with a single
// process-wide secret and algorithm.
type TokenCodec struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec validates the signing configuration and returns a codec.
func NewTokenCodec(secret, algorithm string, ttl time.Duration) (*TokenCodec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		return nil, ErrInvalidTokenTTL
	}

	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrUnsupportedAlg
	}

	return &TokenCodec{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL returns the lifetime of issued tokens.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue creates a signed token for subject that expires after the codec TTL.
func (c *TokenCodec) Issue(subject string, extras TokenExtras) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, ErrEmptyTokenSubject
	}

	now := c.now()
	expiresAt := now.Add(c.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Username: extras.Username,
		IsAdmin:  extras.IsAdmin,
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses a token string and checks signature, algorithm, issuer,
// audience and expiry. Every failure is reported as ErrInvalidToken.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
