package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"promanage/backend/internal/identity/domain"
	"promanage/backend/internal/identity/repository"
	"promanage/backend/internal/platform/apperr"
	"promanage/backend/internal/security"
)

type memUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
	failGet error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.User{}, byEmail: map[string]*domain.User{}}
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGet != nil {
		return nil, r.failGet
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGet != nil {
		return nil, r.failGet
	}
	u, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return repository.ErrEmailTaken
	}
	cp := *u
	r.byID[u.ID] = &cp
	r.byEmail[u.Email] = &cp
	return nil
}

func (r *memUserRepo) SetRefreshTokenHash(ctx context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		u.RefreshTokenHash = hash
	}
	return nil
}

func (r *memUserRepo) ClearRefreshTokenHash(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		u.RefreshTokenHash = ""
	}
	return nil
}

func (r *memUserRepo) ClearRefreshTokenHashIf(ctx context.Context, id, expected string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok || u.RefreshTokenHash == "" || u.RefreshTokenHash != expected {
		return false, nil
	}
	u.RefreshTokenHash = ""
	return true, nil
}

func (r *memUserRepo) stored(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id].RefreshTokenHash
}

func newTestAuthService(t *testing.T) (*AuthService, *memUserRepo) {
	t.Helper()
	repo := newMemUserRepo()
	return NewAuthService(repo, security.NewHasher(4), security.NewTestTokenProvider()), repo
}

func TestAuthService_RegisterRefreshLogoutScenario(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	res, err := svc.Register(ctx, "Alice", "alice@x.com", "pw12345")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatal("Register should issue both tokens")
	}
	if res.User.Role != domain.RoleMember {
		t.Errorf("role = %q, want MEMBER", res.User.Role)
	}

	ref, err := svc.Refresh(ctx, res.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	cred, err := security.NewTestTokenProvider().ValidateAccess(ref.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if cred.SubjectID != res.User.ID || cred.Role != string(domain.RoleMember) {
		t.Errorf("refreshed credential = %+v", cred)
	}

	if err := svc.Logout(ctx, res.User.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Refresh(ctx, res.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("Refresh after logout: err = %v, want ErrInvalidRefreshToken", err)
	}
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)
	if _, err := svc.Register(ctx, "Alice", "alice@x.com", "pw12345"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := svc.Register(ctx, "Other", " ALICE@x.com ", "pw67890")
	if !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Fatalf("err = %v, want ErrEmailAlreadyRegistered", err)
	}
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("kind = %v, want conflict", apperr.KindOf(err))
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc, _ := newTestAuthService(t)
	tests := []struct {
		name, userName, email, password string
		msg                             string
	}{
		{"no name", "  ", "a@x.com", "pw12345", "Name is required"},
		{"one char name", " A ", "a@x.com", "pw12345", "Name must be at least 2 characters"},
		{"no email", "Alice", "", "pw12345", ""},
		{"bad email", "Alice", "not-an-email", "pw12345", ""},
		{"no tld", "Alice", "a@localhost", "pw12345", ""},
		{"no password", "Alice", "a@x.com", "", "Password is required"},
		{"short password", "Alice", "a@x.com", "x", "Password must be at least 6 characters"},
		{"five char password", "Alice", "a@x.com", "pw123", "Password must be at least 6 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.userName, tt.email, tt.password)
			if apperr.KindOf(err) != apperr.KindInvalid {
				t.Fatalf("err = %v, want invalid", err)
			}
			if tt.msg != "" && apperr.PublicMessage(err) != tt.msg {
				t.Errorf("message = %q, want %q", apperr.PublicMessage(err), tt.msg)
			}
		})
	}
}

func TestAuthService_RegisterMinimumsAccepted(t *testing.T) {
	svc, _ := newTestAuthService(t)
	if _, err := svc.Register(context.Background(), "Al", "al@x.com", "pw1234"); err != nil {
		t.Fatalf("Register at minimums: %v", err)
	}
	if _, err := svc.Register(context.Background(), "Jö", "jo@x.com", "пароль"); err != nil {
		t.Errorf("Register with multibyte minimums: %v", err)
	}
}

func TestAuthService_LoginSameMessageForUnknownAndWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)
	if _, err := svc.Register(ctx, "Alice", "alice@x.com", "pw12345"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, errUnknown := svc.Login(ctx, "nobody@x.com", "pw12345")
	_, errWrong := svc.Login(ctx, "alice@x.com", "wrong-password")
	if !errors.Is(errUnknown, ErrInvalidCredentials) || !errors.Is(errWrong, ErrInvalidCredentials) {
		t.Fatalf("errUnknown = %v, errWrong = %v", errUnknown, errWrong)
	}
	if apperr.PublicMessage(errUnknown) != apperr.PublicMessage(errWrong) {
		t.Errorf("messages differ: %q vs %q", apperr.PublicMessage(errUnknown), apperr.PublicMessage(errWrong))
	}
	if _, err := svc.Login(ctx, "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("empty login: err = %v", err)
	}
}

func TestAuthService_SingleSessionInvariant(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestAuthService(t)
	reg, err := svc.Register(ctx, "Alice", "alice@x.com", "pw12345")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	first, err := svc.Login(ctx, "alice@x.com", "pw12345")
	if err != nil {
		t.Fatalf("first Login: %v", err)
	}
	second, err := svc.Login(ctx, "alice@x.com", "pw12345")
	if err != nil {
		t.Fatalf("second Login: %v", err)
	}
	if first.RefreshToken == second.RefreshToken {
		t.Fatal("logins must issue distinct refresh tokens")
	}
	if _, err := svc.Refresh(ctx, first.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("first token after second login: err = %v", err)
	}
	if _, err := svc.Refresh(ctx, reg.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("register token after logins: err = %v", err)
	}
	if _, err := svc.Refresh(ctx, second.RefreshToken); err != nil {
		t.Errorf("second token: %v", err)
	}
	if repo.stored(reg.User.ID) != security.RefreshFingerprint(second.RefreshToken) {
		t.Error("store should hold the fingerprint of the latest refresh token")
	}
}

func TestAuthService_RefreshDoesNotRotateOrWrite(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestAuthService(t)
	reg, err := svc.Register(ctx, "Alice", "alice@x.com", "pw12345")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	before := repo.stored(reg.User.ID)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Refresh(ctx, reg.RefreshToken)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("concurrent Refresh: %v", err)
		}
	}
	if repo.stored(reg.User.ID) != before {
		t.Error("Refresh must not modify the stored fingerprint")
	}
}

func TestAuthService_RefreshRejects(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)
	reg, err := svc.Register(ctx, "Alice", "alice@x.com", "pw12345")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"access token", reg.AccessToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Refresh(ctx, tt.token)
			if !errors.Is(err, ErrInvalidRefreshToken) {
				t.Errorf("err = %v, want ErrInvalidRefreshToken", err)
			}
		})
	}
}

func TestAuthService_RefreshExpired(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()
	clock := &security.ManualClock{T: time.Unix(1_700_000_000, 0)}
	tokens := security.NewTestTokenProvider().WithClock(clock.Now)
	svc := NewAuthService(repo, security.NewHasher(4), tokens)

	reg, err := svc.Register(ctx, "Alice", "alice@x.com", "pw12345")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	clock.Advance(tokens.RefreshTTL())
	if _, err := svc.Refresh(ctx, reg.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("Refresh at expiry: err = %v", err)
	}
}

func TestAuthService_RefreshStoreFailureIsUnexpected(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestAuthService(t)
	reg, err := svc.Register(ctx, "Alice", "alice@x.com", "pw12345")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	boom := errors.New("connection refused")
	repo.mu.Lock()
	repo.failGet = boom
	repo.mu.Unlock()
	_, err = svc.Refresh(ctx, reg.RefreshToken)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want store error", err)
	}
	if apperr.KindOf(err) != apperr.KindInternal {
		t.Errorf("kind = %v, want internal", apperr.KindOf(err))
	}
}

func TestAuthService_Revoke(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestAuthService(t)
	first, err := svc.Register(ctx, "Alice", "alice@x.com", "pw12345")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	second, err := svc.Login(ctx, "alice@x.com", "pw12345")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// A superseded token must not clear the newer session.
	if err := svc.Revoke(ctx, first.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("Revoke stale: err = %v", err)
	}
	if repo.stored(first.User.ID) == "" {
		t.Fatal("stale revoke cleared the live session")
	}

	if err := svc.Revoke(ctx, second.RefreshToken); err != nil {
		t.Fatalf("Revoke live: %v", err)
	}
	if repo.stored(first.User.ID) != "" {
		t.Error("Revoke should clear the stored fingerprint")
	}
	if _, err := svc.Refresh(ctx, second.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("Refresh after revoke: err = %v", err)
	}
	if err := svc.Revoke(ctx, second.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("second Revoke: err = %v", err)
	}
}

func TestAuthService_LogoutIsUnconditional(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestAuthService(t)
	reg, err := svc.Register(ctx, "Alice", "alice@x.com", "pw12345")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.Logout(ctx, reg.User.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := svc.Logout(ctx, reg.User.ID); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
	if repo.stored(reg.User.ID) != "" {
		t.Error("fingerprint should be cleared")
	}
	if err := svc.Logout(ctx, ""); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("empty subject: err = %v", err)
	}
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)
	reg, err := svc.Register(ctx, "Alice", "alice@x.com", "pw12345")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	me, err := svc.Me(ctx, reg.User.ID)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if me.Email != "alice@x.com" || me.Name != "Alice" {
		t.Errorf("Me = %+v", me)
	}
	if _, err := svc.Me(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing: err = %v", err)
	}
}
