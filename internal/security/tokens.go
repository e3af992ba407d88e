package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest signing secret accepted for either token class.
const MinSecretLength = 10

var (
	// ErrInvalidToken is returned when a token is malformed, badly signed, or expired.
	ErrInvalidToken = errors.New("invalid token")
	// ErrWeakSecret is returned when a signing secret is too short or both secrets are equal.
	ErrWeakSecret = errors.New("signing secrets must be at least 10 characters and differ from each other")
)

// Subject is the identity a token pair is issued for.
type Subject struct {
	ID    string
	Email string
	Role  string
}

// AccessCredential is the verified content of an access token.
type AccessCredential struct {
	SubjectID string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AccessClaims holds JWT claims for the access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// RefreshClaims holds JWT claims for the refresh token. Only the subject is carried.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// TokenProvider issues and validates HS256 access and refresh tokens. Each
// class has its own secret and lifetime.
type TokenProvider struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenProvider returns a TokenProvider. Both secrets must be at least
// MinSecretLength characters and must differ.
func NewTokenProvider(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*TokenProvider, error) {
	if len(accessSecret) < MinSecretLength || len(refreshSecret) < MinSecretLength || accessSecret == refreshSecret {
		return nil, ErrWeakSecret
	}
	return &TokenProvider{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}, nil
}

// WithClock replaces the time source used for issuing and validating. Intended for tests.
func (p *TokenProvider) WithClock(now func() time.Time) *TokenProvider {
	p.now = now
	return p
}

// AccessTTL returns the configured access token lifetime.
func (p *TokenProvider) AccessTTL() time.Duration { return p.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (p *TokenProvider) RefreshTTL() time.Duration { return p.refreshTTL }

// IssueAccess issues a short-lived access token carrying the subject's id, email and role.
func (p *TokenProvider) IssueAccess(sub Subject) (token string, expiresAt time.Time, err error) {
	jti, err := generateJTI()
	if err != nil {
		return "", time.Time{}, err
	}
	now := p.now().UTC()
	// exp is whole seconds on the wire; report the same instant.
	expiresAt = now.Add(p.accessTTL).Truncate(time.Second)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   sub.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: sub.Email,
		Role:  sub.Role,
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.accessSecret)
	return token, expiresAt, err
}

// IssueRefresh issues a long-lived refresh token carrying only the subject id.
// The jti makes every issued token distinct even within the same second.
func (p *TokenProvider) IssueRefresh(sub Subject) (token string, expiresAt time.Time, err error) {
	jti, err := generateJTI()
	if err != nil {
		return "", time.Time{}, err
	}
	now := p.now().UTC()
	expiresAt = now.Add(p.refreshTTL).Truncate(time.Second)
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   sub.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.refreshSecret)
	return token, expiresAt, err
}

// ValidateAccess verifies signature and expiry of an access token. A token
// checked at exactly its expiry instant is rejected.
func (p *TokenProvider) ValidateAccess(tokenString string) (*AccessCredential, error) {
	claims := &AccessClaims{}
	if err := p.parse(tokenString, claims, p.accessSecret); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	cred := &AccessCredential{
		SubjectID: claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		cred.IssuedAt = claims.IssuedAt.Time
	}
	return cred, nil
}

// ValidateRefresh verifies signature and expiry of a refresh token and returns its subject id.
// It does not consult the stored session; callers must compare against the persisted fingerprint.
func (p *TokenProvider) ValidateRefresh(tokenString string) (subjectID string, err error) {
	claims := &RefreshClaims{}
	if err := p.parse(tokenString, claims, p.refreshSecret); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (p *TokenProvider) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
