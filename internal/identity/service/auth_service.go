package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"promanage/backend/internal/identity/domain"
	"promanage/backend/internal/identity/repository"
	"promanage/backend/internal/platform/apperr"
	"promanage/backend/internal/security"
)

// Client-facing failures. Credential mismatches share one message so account
// existence cannot be inferred.
var (
	ErrEmailAlreadyRegistered = apperr.Conflict("Email already registered")
	ErrInvalidCredentials     = apperr.Unauthorized("Invalid email or password")
	ErrInvalidRefreshToken    = apperr.Unauthorized("Invalid or expired refresh token")
	ErrUserNotFound           = apperr.NotFound("User not found")
	ErrNameTooShort           = apperr.Invalid("Name must be at least 2 characters")
	ErrPasswordTooShort       = apperr.Invalid("Password must be at least 6 characters")
)

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User             domain.Summary
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// RefreshResult carries a newly issued access token. The refresh token is not rotated.
type RefreshResult struct {
	UserID      string
	AccessToken string
	ExpiresAt   time.Time
}

// AuthService is the session manager: register, login, refresh, logout and revoke.
// It holds no per-request state; everything durable lives in the repository.
type AuthService struct {
	users  repository.Repository
	hasher *security.Hasher
	tokens *security.TokenProvider
	now    func() time.Time
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(users repository.Repository, hasher *security.Hasher, tokens *security.TokenProvider) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a MEMBER account and starts its session.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return nil, apperr.Invalid("Name is required")
	}
	if utf8.RuneCountInString(name) < domain.MinNameLength {
		return nil, ErrNameTooShort
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, apperr.Invalid("Password is required")
	}
	if utf8.RuneCountInString(password) < domain.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	now := s.now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         domain.RoleMember,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, apperr.Invalid(err.Error())
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, err
	}
	return s.startSession(ctx, user)
}

// Login verifies the password and starts a new session, replacing any previous one.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.hasher.VerifyUnknown([]byte(password))
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(user.PasswordHash, []byte(password)) {
		return nil, ErrInvalidCredentials
	}
	return s.startSession(ctx, user)
}

// Refresh exchanges a live refresh token for a new access token. It never
// writes, so concurrent calls with the same token are safe.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	userID, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !security.RefreshFingerprintEqual(refreshToken, user.RefreshTokenHash) {
		return nil, ErrInvalidRefreshToken
	}
	access, exp, err := s.tokens.IssueAccess(subjectOf(user))
	if err != nil {
		return nil, err
	}
	return &RefreshResult{UserID: user.ID, AccessToken: access, ExpiresAt: exp}, nil
}

// Logout clears the stored refresh fingerprint for userID unconditionally.
// A refresh that already read the old value may still complete once.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrUserNotFound
	}
	return s.users.ClearRefreshTokenHash(ctx, userID)
}

// Revoke ends the session that refreshToken belongs to, but only if that token
// is still the stored one. A token already superseded by a later login is
// rejected without touching the newer session.
func (s *AuthService) Revoke(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrInvalidRefreshToken
	}
	userID, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return ErrInvalidRefreshToken
	}
	cleared, err := s.users.ClearRefreshTokenHashIf(ctx, userID, security.RefreshFingerprint(refreshToken))
	if err != nil {
		return err
	}
	if !cleared {
		return ErrInvalidRefreshToken
	}
	return nil
}

// Me returns the public profile of userID.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.Summary, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	sum := user.Summary()
	return &sum, nil
}

func (s *AuthService) startSession(ctx context.Context, user *domain.User) (*AuthResult, error) {
	sub := subjectOf(user)
	access, accessExp, err := s.tokens.IssueAccess(sub)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.tokens.IssueRefresh(sub)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRefreshTokenHash(ctx, user.ID, security.RefreshFingerprint(refresh)); err != nil {
		return nil, err
	}
	return &AuthResult{
		User:             user.Summary(),
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func subjectOf(u *domain.User) security.Subject {
	return security.Subject{ID: u.ID, Email: u.Email, Role: string(u.Role)}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return apperr.Invalid("Email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return apperr.Invalid("Invalid email address")
	}
	return nil
}
