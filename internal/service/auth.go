package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"go-gin-gorm-notes/internal/core/auth"
	"go-gin-gorm-notes/internal/core/config"
	"go-gin-gorm-notes/internal/core/oauth"
	"go-gin-gorm-notes/internal/core/storage"
	"go-gin-gorm-notes/internal/domain"
	"go-gin-gorm-notes/internal/repo"
	"go-gin-gorm-notes/pkg/utils"
)

// LoginRequest is either Credentials or SocialProbe.
type LoginRequest interface{ loginRequest() }

// Credentials 邮箱 + 密码登录
type Credentials struct {
	Email    string
	Password string
}

// SocialProbe 第三方登录回调后按邮箱查找已有账号，不校验密码
type SocialProbe struct {
	Email string
}

func (Credentials) loginRequest() {}
func (SocialProbe) loginRequest() {}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Image    string
	Method   string
}

type ProfileUpdate struct {
	Name *string `json:"name"`
}

// Session 是登录/注册成功后返回给 HTTP 层的结果
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *domain.User
}

type AuthService struct {
	users        domain.UserRepository
	lookup       *UserLookup
	jwt          *auth.JWTer
	uploader     storage.Uploader
	adminEmail   string
	defaultImage string
	log          *zap.Logger
}

func NewAuthService(users domain.UserRepository, lookup *UserLookup, jwt *auth.JWTer, up storage.Uploader, c config.Auth, l *zap.Logger) *AuthService {
	if up == nil {
		up = storage.Disabled{}
	}
	return &AuthService{
		users:        users,
		lookup:       lookup,
		jwt:          jwt,
		uploader:     up,
		adminEmail:   normalizeEmail(c.AdminEmail),
		defaultImage: c.DefaultImage,
		log:          l,
	}
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func payloadOf(u *domain.User) auth.Payload {
	return auth.Payload{UID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Image: u.Image}
}

func (s *AuthService) session(u *domain.User) (*Session, error) {
	pair, err := s.jwt.IssuePair(payloadOf(u))
	if err != nil {
		return nil, domain.Internal("issue token failed", err)
	}
	return &Session{AccessToken: pair.Access, RefreshToken: pair.Refresh, User: u}, nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" {
		return nil, domain.BadRequest("Name and email are required")
	}
	method := strings.ToLower(strings.TrimSpace(in.Method))
	if method == "" {
		method = domain.MethodCredentials
	}
	if !domain.ValidMethod(method) {
		return nil, domain.BadRequest("Unsupported login method")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.Internal("register failed", err)
	}
	if existing != nil {
		return nil, domain.Conflict("User already exists")
	}

	pw := in.Password
	if pw == "" {
		if pw, err = utils.RandomPassword(); err != nil {
			return nil, domain.Internal("register failed", err)
		}
	}
	hash, err := utils.HashPassword(pw)
	if err != nil {
		return nil, domain.Internal("register failed", err)
	}

	u := &domain.User{
		ID:           utils.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Method:       method,
		Image:        strings.TrimSpace(in.Image),
	}
	if u.Image == "" {
		u.Image = s.defaultImage
	}
	if s.adminEmail != "" && email == s.adminEmail {
		u.Role = domain.RoleAdmin
	}
	if err := s.users.Create(ctx, u); err != nil {
		// 并发注册同一邮箱
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, domain.Conflict("User already exists")
		}
		return nil, domain.Internal("register failed", err)
	}
	s.log.Info("user registered", zap.String("userId", u.ID), zap.String("method", u.Method), zap.String("role", u.Role))
	return s.session(u)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	var email string
	switch r := req.(type) {
	case Credentials:
		email = r.Email
	case SocialProbe:
		email = r.Email
	default:
		return nil, domain.BadRequest("unsupported login request")
	}

	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, domain.Internal("login failed", err)
	}
	if u == nil {
		return nil, domain.NotFound("User not found")
	}

	switch r := req.(type) {
	case Credentials:
		if u.Method != domain.MethodCredentials {
			return nil, domain.Unauthorized("Please sign in with " + u.Method)
		}
		if !utils.CheckPassword(r.Password, u.PasswordHash) {
			return nil, domain.Unauthorized("Invalid password")
		}
	case SocialProbe:
		if u.Method == domain.MethodCredentials {
			return nil, domain.Unauthorized("Please sign in with email and password")
		}
	}
	return s.session(u)
}

// RefreshAccessToken verifies a refresh token and mints a new access token.
// The refresh token itself is not rotated.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwt.Parse(auth.KindRefresh, refreshToken)
	if err != nil {
		return "", domain.Unauthorized("Invalid refresh token")
	}
	u, err := s.lookup.Get(ctx, claims.UID)
	if err != nil {
		return "", domain.Internal("refresh failed", err)
	}
	if u == nil {
		return "", domain.Unauthorized("User no longer exists")
	}
	tok, err := s.jwt.Issue(auth.KindAccess, payloadOf(u))
	if err != nil {
		return "", domain.Internal("issue token failed", err)
	}
	return tok, nil
}

// SocialSignIn logs an existing social account in, or registers a new one
// from the provider profile.
func (s *AuthService) SocialSignIn(ctx context.Context, p *oauth.Profile) (*Session, error) {
	sess, err := s.Login(ctx, SocialProbe{Email: p.Email})
	if err == nil {
		return sess, nil
	}
	if domain.CodeOf(err) == http.StatusInternalServerError {
		return nil, err
	}
	return s.Register(ctx, RegisterInput{
		Name:   p.Name,
		Email:  p.Email,
		Image:  p.Image,
		Method: p.Provider,
	})
}

// Authenticate 校验令牌并确认用户仍然存在
func (s *AuthService) Authenticate(ctx context.Context, kind auth.Kind, token string) (*domain.User, error) {
	claims, err := s.jwt.Parse(kind, token)
	if err != nil {
		return nil, domain.Unauthorized("Invalid token")
	}
	u, err := s.lookup.Get(ctx, claims.UID)
	if err != nil {
		return nil, domain.Internal("user lookup failed", err)
	}
	if u == nil {
		return nil, domain.Unauthorized("User not found")
	}
	return u, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, domain.Internal("load profile failed", err)
	}
	if u == nil {
		return nil, domain.NotFound("User not found")
	}
	return u, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate, img *storage.File) (*domain.User, error) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.BadRequest("Name cannot be empty")
		}
		u.Name = name
	}
	if img != nil {
		if u.Image, err = s.upload(ctx, img); err != nil {
			return nil, err
		}
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, domain.Internal("update profile failed", err)
	}
	if err := s.lookup.Forget(ctx, u.ID); err != nil {
		s.log.Warn("user cache invalidate failed", zap.String("userId", u.ID), zap.Error(err))
	}
	return u, nil
}

func (s *AuthService) upload(ctx context.Context, f *storage.File) (string, error) {
	return uploadImage(ctx, s.uploader, s.log, f)
}

func uploadImage(ctx context.Context, up storage.Uploader, l *zap.Logger, f *storage.File) (string, error) {
	url, err := up.Upload(ctx, f)
	if errors.Is(err, storage.ErrStorageDisabled) {
		return "", domain.BadRequest("Image upload is not available")
	}
	if err != nil {
		l.Error("image upload failed", zap.String("file", f.Name), zap.Error(err))
		return "", domain.Internal("image upload failed", err)
	}
	return url, nil
}
