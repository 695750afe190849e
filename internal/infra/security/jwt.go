package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleConsumer Role = "consumer"
	RoleVendor   Role = "vendor"
)

var (
	ErrInvalidToken = errors.New("security: invalid token")
	ErrMissingKey   = errors.New("security: signing secret required")
)

// Principal is the caller identity carried by a verified access token.
type Principal struct {
	UserID   string
	Role     Role
	VendorID string
}

type Claims struct {
	Role     Role   `json:"role"`
	VendorID string `json:"vendor_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 access tokens.
type TokenService struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Now    func() time.Time
}

func NewTokenService(secret, issuer string) TokenService {
	return TokenService{Secret: []byte(secret), Issuer: issuer, TTL: time.Hour}
}

func (s TokenService) Issue(p Principal) (string, error) {
	if len(s.Secret) == 0 {
		return "", ErrMissingKey
	}
	if p.UserID == "" {
		return "", fmt.Errorf("%w: subject required", ErrInvalidToken)
	}
	now := s.now()
	ttl := s.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	claims := Claims{
		Role:     p.Role,
		VendorID: p.VendorID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    s.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

func (s TokenService) Verify(raw string) (Principal, error) {
	if len(s.Secret) == 0 {
		return Principal{}, ErrMissingKey
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.Issuer))
	}
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.Secret, nil
	}, opts...)
	if err != nil || !tok.Valid {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	role := Role(strings.ToLower(string(claims.Role)))
	switch role {
	case RoleConsumer, RoleVendor:
	default:
		return Principal{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	if claims.Subject == "" {
		return Principal{}, fmt.Errorf("%w: subject required", ErrInvalidToken)
	}
	if role == RoleVendor && claims.VendorID == "" {
		return Principal{}, fmt.Errorf("%w: vendor token without vendor_id", ErrInvalidToken)
	}
	return Principal{UserID: claims.Subject, Role: role, VendorID: claims.VendorID}, nil
}

func (s TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
