package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/astrein-exzellent/lagerhub-backend/pkg/auth"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/auth/session"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/config"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/db/models"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/enums"
	pkgerrors "github.com/astrein-exzellent/lagerhub-backend/pkg/errors"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/security"
)

type fakeUserRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
}

func (f *fakeUserRepo) add(u *models.User) {
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if u, ok := f.byID[id]; ok {
		u.LastLoginAt = &at
		return nil
	}
	return gorm.ErrRecordNotFound
}

type fakeSessions struct {
	tokens map[string]string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{tokens: map[string]string{}}
}

func (f *fakeSessions) Generate(_ context.Context, accessID string) (string, error) {
	token := uuid.NewString()
	f.tokens[accessID] = token
	return token, nil
}

func (f *fakeSessions) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := f.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.tokens, oldAccessID)
	newID := session.NewAccessID()
	newToken := uuid.NewString()
	f.tokens[newID] = newToken
	return newID, newToken, nil
}

func (f *fakeSessions) Revoke(_ context.Context, accessID string) error {
	delete(f.tokens, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret",
		Issuer:                 "lagerhub-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 60,
	}
}

func testPasswordConfig() config.PasswordConfig {
	// Small parameters keep argon2 fast in tests.
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func seedUser(t *testing.T, repo *fakeUserRepo, email, password string, role enums.Role, active bool) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         "Test Nutzer",
		Role:         role,
		IsActive:     active,
	}
	repo.add(user)
	return user
}

func newTestService(t *testing.T, repo *fakeUserRepo, sessions *fakeSessions) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestLoginIssuesTokenPair(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	sessions := newFakeSessions()
	user := seedUser(t, repo, "mira@example.com", "geheim-123", enums.RoleMitarbeiter, true)
	svc := newTestService(t, repo, sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "  Mira@Example.com ",
		Password: "geheim-123",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if resp.User == nil || resp.User.ID != user.ID {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}
	if user.LastLoginAt == nil {
		t.Fatal("expected last login stamp")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != enums.RoleMitarbeiter {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, ok := sessions.tokens[claims.ID]; !ok {
		t.Fatal("expected session keyed by jti")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	sessions := newFakeSessions()
	seedUser(t, repo, "mira@example.com", "geheim-123", enums.RoleMitarbeiter, true)
	seedUser(t, repo, "inaktiv@example.com", "geheim-123", enums.RoleMitarbeiter, false)
	svc := newTestService(t, repo, sessions)
	ctx := context.Background()

	cases := []LoginRequest{
		{Email: "mira@example.com", Password: "falsch"},
		{Email: "unbekannt@example.com", Password: "geheim-123"},
		{Email: "inaktiv@example.com", Password: "geheim-123"},
		{Email: "", Password: "geheim-123"},
	}
	for _, req := range cases {
		_, err := svc.Login(ctx, req)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized for %q, got %v", req.Email, err)
		}
		// The message must not reveal which part of the credentials failed.
		if typed.Message() != invalidCredentialsMessage {
			t.Fatalf("unexpected message %q", typed.Message())
		}
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	sessions := newFakeSessions()
	seedUser(t, repo, "mira@example.com", "geheim-123", enums.RoleMitarbeiter, true)
	svc := newTestService(t, repo, sessions)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: "mira@example.com", Password: "geheim-123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.AccessToken == login.AccessToken {
		t.Fatal("expected a new access token")
	}

	// The old refresh token is single-use.
	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on token reuse, got %v", err)
	}
}

func TestRefreshRejectsDeactivatedUser(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	sessions := newFakeSessions()
	user := seedUser(t, repo, "mira@example.com", "geheim-123", enums.RoleMitarbeiter, true)
	svc := newTestService(t, repo, sessions)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: "mira@example.com", Password: "geheim-123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	user.IsActive = false
	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	sessions := newFakeSessions()
	seedUser(t, repo, "mira@example.com", "geheim-123", enums.RoleMitarbeiter, true)
	svc := newTestService(t, repo, sessions)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: "mira@example.com", Password: "geheim-123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(ctx, LogoutRequest{AccessToken: login.AccessToken}); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.tokens) != 0 {
		t.Fatalf("expected session revoked, still %d live", len(sessions.tokens))
	}

	// Garbage tokens are a no-op, not an error.
	if err := svc.Logout(ctx, LogoutRequest{AccessToken: "kaputt"}); err != nil {
		t.Fatalf("logout with invalid token: %v", err)
	}

	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized after logout, got %v", err)
	}
}
