// Package auth handles access-code verification and JWT session tokens.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Role is one of the two static access roles.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Satisfies reports whether r grants at least the access of required.
func (r Role) Satisfies(required Role) bool {
	switch required {
	case RoleMember:
		return r.Valid()
	case RoleAdmin:
		return r == RoleAdmin
	default:
		return false
	}
}

// ErrInvalidCode is returned when no active access code matches.
var ErrInvalidCode = errors.New("invalid access code")

const issuer = "homeplanner"

// AccessCode is a shared login code. Only its bcrypt hash is kept.
type AccessCode struct {
	Label  string `json:"label"`
	Role   Role   `json:"role"`
	Hash   string `json:"-"`
	Active bool   `json:"is_active"`
}

// Claims represents JWT claims for a session.
type Claims struct {
	Label string `json:"label"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}

// Auth verifies access codes and issues session tokens.
type Auth struct {
	jwtSecret     []byte
	tokenDuration time.Duration
	codes         []AccessCode
	now           func() time.Time
}

// New creates a new Auth instance.
func New(jwtSecret string, codes []AccessCode) *Auth {
	return &Auth{
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: 24 * time.Hour,
		codes:         codes,
		now:           time.Now,
	}
}

// Codes returns the configured access codes.
func (a *Auth) Codes() []AccessCode {
	return append([]AccessCode(nil), a.codes...)
}

// HashCode hashes an access code using bcrypt.
func HashCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(code)), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing access code: %w", err)
	}
	return string(hash), nil
}

// MatchCode returns the first active access code matching the submitted
// value. Surrounding whitespace is ignored.
func (a *Auth) MatchCode(submitted string) (AccessCode, error) {
	code := []byte(strings.TrimSpace(submitted))
	if len(code) == 0 {
		return AccessCode{}, ErrInvalidCode
	}
	for _, ac := range a.codes {
		if !ac.Active {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(ac.Hash), code) == nil {
			return ac, nil
		}
	}
	return AccessCode{}, ErrInvalidCode
}

// MaskCode keeps the first four characters of a submitted code for the
// audit trail.
func MaskCode(submitted string) string {
	r := []rune(strings.TrimSpace(submitted))
	if len(r) > 4 {
		r = r[:4]
	}
	return string(r) + "***"
}

// GenerateJWT creates a signed session token. It returns the token and its
// expiry.
func (a *Auth) GenerateJWT(label string, role Role) (string, time.Time, error) {
	now := a.now()
	expires := now.Add(a.tokenDuration)
	claims := &Claims{
		Label: label,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expires, nil
}

// ValidateJWT parses and validates a session token.
func (a *Auth) ValidateJWT(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Label == "" || !claims.Role.Valid() {
		return nil, errors.New("token is missing label or role")
	}

	return claims, nil
}
