package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-gin-gorm-notes/internal/core/auth"
	"go-gin-gorm-notes/internal/core/config"
	"go-gin-gorm-notes/internal/core/database"
	"go-gin-gorm-notes/internal/core/oauth"
	"go-gin-gorm-notes/internal/core/storage"
	"go-gin-gorm-notes/internal/domain"
	"go-gin-gorm-notes/internal/repo"
)

const testAdmin = "admin@example.com"

type fakeUploader struct {
	calls int
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, file *storage.File) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.test/" + file.Name, nil
}

type env struct {
	db       *gorm.DB
	jwt      *auth.JWTer
	uploader *fakeUploader
	auth     *AuthService
	users    *UserService
	cats     *CategoryService
	notes    *NoteService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := database.NewGorm(database.Opts{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1, LogLevel: "silent", Logger: zap.NewNop()})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	l := zap.NewNop()
	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "notes", AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour}
	up := &fakeUploader{}
	users := repo.NewUserRepo(db)
	cats := repo.NewCategoryRepo(db)
	notes := repo.NewNoteRepo(db)
	lookup := NewUserLookup(users, nil, time.Minute)

	return &env{
		db:       db,
		jwt:      jwter,
		uploader: up,
		auth:     NewAuthService(users, lookup, jwter, up, config.Auth{AdminEmail: testAdmin, DefaultImage: "https://img.test/default.png"}, l),
		users:    NewUserService(users, lookup, l),
		cats:     NewCategoryService(users, cats, l),
		notes:    NewNoteService(users, cats, notes, up, l),
	}
}

func (e *env) register(t *testing.T, email string) *domain.User {
	t.Helper()
	s, err := e.auth.Register(context.Background(), RegisterInput{Name: strings.Split(email, "@")[0], Email: email, Password: "secret123"})
	require.NoError(t, err)
	return s.User
}

func assertCode(t *testing.T, code int, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, domain.CodeOf(err), "err: %v", err)
}

func TestRegister_RoleAndDefaults(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	s, err := e.auth.Register(ctx, RegisterInput{Name: "Root", Email: "  Admin@Example.com ", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, s.User.Role)
	assert.Equal(t, testAdmin, s.User.Email)
	assert.Equal(t, domain.MethodCredentials, s.User.Method)
	assert.Equal(t, "https://img.test/default.png", s.User.Image)
	assert.NotEmpty(t, s.AccessToken)
	assert.NotEmpty(t, s.RefreshToken)

	claims, err := e.jwt.Parse(auth.KindAccess, s.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, claims.UID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)

	s, err = e.auth.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, s.User.Role)
}

func TestRegister_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.auth.Register(ctx, RegisterInput{Email: "x@example.com"})
	assertCode(t, http.StatusBadRequest, err)

	_, err = e.auth.Register(ctx, RegisterInput{Name: "x", Email: "x@example.com", Method: "myspace"})
	assertCode(t, http.StatusBadRequest, err)
}

func TestRegister_DuplicateConflict(t *testing.T) {
	e := newEnv(t)
	e.register(t, "ann@example.com")

	_, err := e.auth.Register(context.Background(), RegisterInput{Name: "Ann", Email: "ANN@example.com", Password: "other"})
	assertCode(t, http.StatusConflict, err)
}

func TestRegister_WithoutPasswordCannotUseEmptyPassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.auth.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)

	_, err = e.auth.Login(ctx, Credentials{Email: "ann@example.com", Password: ""})
	assertCode(t, http.StatusUnauthorized, err)
}

func TestLogin_Credentials(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "ann@example.com")

	s, err := e.auth.Login(ctx, Credentials{Email: "Ann@Example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, s.User.ID)

	_, err = e.auth.Login(ctx, Credentials{Email: "ann@example.com", Password: "wrong"})
	assertCode(t, http.StatusUnauthorized, err)

	_, err = e.auth.Login(ctx, Credentials{Email: "nobody@example.com", Password: "secret123"})
	assertCode(t, http.StatusNotFound, err)
}

func TestLogin_MethodMismatch(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "ann@example.com")
	_, err := e.auth.Register(ctx, RegisterInput{Name: "Gus", Email: "gus@example.com", Password: "secret123", Method: domain.MethodGitHub})
	require.NoError(t, err)

	// 社交探测不能登录密码账号
	_, err = e.auth.Login(ctx, SocialProbe{Email: "ann@example.com"})
	assertCode(t, http.StatusUnauthorized, err)

	// 密码登录不能登录社交账号，即使密码正确
	_, err = e.auth.Login(ctx, Credentials{Email: "gus@example.com", Password: "secret123"})
	assertCode(t, http.StatusUnauthorized, err)

	s, err := e.auth.Login(ctx, SocialProbe{Email: "gus@example.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.MethodGitHub, s.User.Method)
}

func TestRefreshAccessToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s, err := e.auth.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)

	tok, err := e.auth.RefreshAccessToken(ctx, s.RefreshToken)
	require.NoError(t, err)
	claims, err := e.jwt.Parse(auth.KindAccess, tok)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, claims.UID)
	assert.Equal(t, "ann@example.com", claims.Email)
	assert.Equal(t, "Ann", claims.Name)
}

func TestRefreshAccessToken_Rejects(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s, err := e.auth.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)

	expiredJWT := &auth.JWTer{Secret: e.jwt.Secret, Issuer: e.jwt.Issuer, RefreshTTL: -time.Hour}
	expired, err := expiredJWT.Issue(auth.KindRefresh, payloadOf(s.User))
	require.NoError(t, err)

	parts := strings.Split(s.RefreshToken, ".")
	require.Len(t, parts, 3)
	if parts[1][0] == 'A' {
		parts[1] = "B" + parts[1][1:]
	} else {
		parts[1] = "A" + parts[1][1:]
	}
	tampered := strings.Join(parts, ".")

	for name, tok := range map[string]string{
		"tampered":     tampered,
		"expired":      expired,
		"access token": s.AccessToken,
		"garbage":      "not.a.jwt",
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			got, err := e.auth.RefreshAccessToken(ctx, tok)
			assertCode(t, http.StatusUnauthorized, err)
			assert.Empty(t, got)
		})
	}
}

func TestRefreshAccessToken_BannedUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s, err := e.auth.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, e.users.Ban(ctx, s.User.ID))

	_, err = e.auth.RefreshAccessToken(ctx, s.RefreshToken)
	assertCode(t, http.StatusUnauthorized, err)
	_, err = e.auth.Authenticate(ctx, auth.KindAccess, s.AccessToken)
	assertCode(t, http.StatusUnauthorized, err)
}

func TestSocialSignIn(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := &oauth.Profile{Provider: domain.MethodGitHub, Email: "Gus@Example.com", Name: "Gus", Image: "https://avatars.test/gus"}

	first, err := e.auth.SocialSignIn(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, domain.MethodGitHub, first.User.Method)
	assert.Equal(t, "https://avatars.test/gus", first.User.Image)
	assert.Equal(t, domain.RoleUser, first.User.Role)

	second, err := e.auth.SocialSignIn(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)

	e.register(t, "ann@example.com")
	_, err = e.auth.SocialSignIn(ctx, &oauth.Profile{Provider: domain.MethodGoogle, Email: "ann@example.com", Name: "Ann"})
	assertCode(t, http.StatusConflict, err)
}

func TestSocialSignIn_AdminEmail(t *testing.T) {
	e := newEnv(t)
	s, err := e.auth.SocialSignIn(context.Background(), &oauth.Profile{Provider: domain.MethodGoogle, Email: testAdmin, Name: "Root"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, s.User.Role)
}

func TestUpdateProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "ann@example.com")

	name := "  Annie "
	got, err := e.auth.UpdateProfile(ctx, u.ID, ProfileUpdate{Name: &name}, &storage.File{Name: "me.png"})
	require.NoError(t, err)
	assert.Equal(t, "Annie", got.Name)
	assert.Equal(t, "https://cdn.test/me.png", got.Image)
	assert.Equal(t, 1, e.uploader.calls)

	again, err := e.auth.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Annie", again.Name)

	blank := " "
	_, err = e.auth.UpdateProfile(ctx, u.ID, ProfileUpdate{Name: &blank}, nil)
	assertCode(t, http.StatusBadRequest, err)

	e.uploader.err = errors.New("s3 down")
	_, err = e.auth.UpdateProfile(ctx, u.ID, ProfileUpdate{}, &storage.File{Name: "x.png"})
	assertCode(t, http.StatusInternalServerError, err)

	e.uploader.err = storage.ErrStorageDisabled
	_, err = e.auth.UpdateProfile(ctx, u.ID, ProfileUpdate{}, &storage.File{Name: "x.png"})
	assertCode(t, http.StatusBadRequest, err)
}

func TestBan_NotFound(t *testing.T) {
	e := newEnv(t)
	assertCode(t, http.StatusNotFound, e.users.Ban(context.Background(), "missing"))
}
