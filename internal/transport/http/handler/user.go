package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go-gin-gorm-notes/internal/core/config"
	"go-gin-gorm-notes/internal/core/oauth"
	"go-gin-gorm-notes/internal/domain"
	"go-gin-gorm-notes/internal/service"
	"go-gin-gorm-notes/internal/transport/http/ez"
	mdw "go-gin-gorm-notes/internal/transport/http/middleware"
	resp "go-gin-gorm-notes/internal/transport/http/response"
)

type UserHandler struct {
	auth       *service.AuthService
	providers  *oauth.Providers
	cookies    cookies
	successURL string
	loginRPS   float64
	loginBurst int
	log        *zap.Logger
}

func NewUserHandler(a *service.AuthService, p *oauth.Providers, cfg *config.Config, l *zap.Logger) *UserHandler {
	if p == nil {
		p = oauth.New(config.OAuth{})
	}
	return &UserHandler{
		auth:      a,
		providers: p,
		cookies: cookies{
			refreshName: cfg.Auth.CookieName,
			refreshTTL:  cfg.JWT.RefreshTTL(),
			stateTTL:    time.Duration(cfg.Auth.StateTTLMin) * time.Minute,
			secure:      cfg.App.IsProduction(),
		},
		successURL: cfg.Auth.SuccessURL,
		loginRPS:   cfg.Auth.LoginRPS,
		loginBurst: cfg.Auth.LoginBurst,
		log:        l,
	}
}

type registerIn struct {
	Name     string `json:"name"     binding:"required"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password"`
	Image    string `json:"image"`
	Method   string `json:"method"`
}

type loginIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type sessionOut struct {
	AccessToken string       `json:"accessToken"`
	User        *domain.User `json:"user"`
}

type tokenOut struct {
	AccessToken string `json:"accessToken"`
}

func (h *UserHandler) MountAPI(pub, authed ez.EZ) {
	var limit []gin.HandlerFunc
	if h.loginRPS > 0 {
		limit = append(limit, mdw.RateLimitPerIP(rate.Limit(h.loginRPS), h.loginBurst))
	}
	u := pub.Group("/user", limit...)

	ez.RegisterAction(u, ez.Action[registerIn, sessionOut]{
		Method:  http.MethodPost,
		Path:    "/register",
		Binder:  ez.BindJSON,
		Status:  http.StatusCreated,
		Message: "User registered successfully",
		Handler: func(c *gin.Context, in *registerIn) (sessionOut, error) {
			// 第三方账号只能通过 OAuth 回调创建
			if in.Method != "" && in.Method != domain.MethodCredentials {
				return sessionOut{}, domain.BadRequest("Invalid sign-up method")
			}
			sess, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
				Name: in.Name, Email: in.Email, Password: in.Password, Image: in.Image, Method: domain.MethodCredentials,
			})
			if err != nil {
				return sessionOut{}, err
			}
			h.cookies.setRefresh(c, sess.RefreshToken)
			return sessionOut{AccessToken: sess.AccessToken, User: sess.User}, nil
		},
	})

	ez.RegisterAction(u, ez.Action[loginIn, sessionOut]{
		Method:  http.MethodPost,
		Path:    "/login",
		Binder:  ez.BindJSON,
		Message: "User logged in successfully",
		Handler: func(c *gin.Context, in *loginIn) (sessionOut, error) {
			// 公开接口只走密码校验；SocialProbe 仅由 OAuth 回调内部使用
			sess, err := h.auth.Login(c.Request.Context(), service.Credentials{Email: in.Email, Password: in.Password})
			if err != nil {
				mdw.ObserveAuth("login_failed")
				return sessionOut{}, err
			}
			mdw.ObserveAuth("login")
			h.cookies.setRefresh(c, sess.RefreshToken)
			return sessionOut{AccessToken: sess.AccessToken, User: sess.User}, nil
		},
	})

	ez.RegisterAction(u, ez.Action[struct{}, tokenOut]{
		Method:  http.MethodPost,
		Path:    "/refreshToken",
		Binder:  ez.BindNone,
		Message: "Access token refreshed successfully",
		Handler: func(c *gin.Context, _ *struct{}) (tokenOut, error) {
			rt, err := c.Cookie(h.cookies.refreshName)
			if err != nil || rt == "" {
				return tokenOut{}, domain.Unauthorized("Refresh token not found")
			}
			tok, err := h.auth.RefreshAccessToken(c.Request.Context(), rt)
			if err != nil {
				return tokenOut{}, err
			}
			return tokenOut{AccessToken: tok}, nil
		},
	})

	u.Raw().GET("/oauth/:provider", h.oauthStart(u))
	u.Raw().GET("/oauth/:provider/callback", h.oauthCallback(u))

	me := authed.Group("/user")
	ez.RegisterAction(me, ez.Action[struct{}, *domain.User]{
		Method:  http.MethodGet,
		Path:    "",
		Binder:  ez.BindNone,
		Auth:    true,
		Message: "User retrieved successfully",
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.auth.Profile(c.Request.Context(), c.GetString(ez.KeyUserID))
		},
	})

	ez.RegisterAction(me, ez.Action[service.ProfileUpdate, *domain.User]{
		Method:  http.MethodPut,
		Path:    "",
		Binder:  ez.BindMultipart,
		Auth:    true,
		Message: "User updated successfully",
		Handler: func(c *gin.Context, in *service.ProfileUpdate) (*domain.User, error) {
			img, done, err := ez.FormImage(c, "image")
			defer done()
			if err != nil {
				return nil, err
			}
			return h.auth.UpdateProfile(c.Request.Context(), c.GetString(ez.KeyUserID), *in, img)
		},
	})
}

func (h *UserHandler) oauthStart(e ez.EZ) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")
		state, err := oauth.NewState()
		if err != nil {
			e.Fail(c, domain.Internal("generate state failed", err))
			return
		}
		url, err := h.providers.AuthCodeURL(provider, state)
		if err != nil {
			e.Fail(c, domain.NotFound("Unknown sign-in provider"))
			return
		}
		h.cookies.setState(c, state)
		c.Redirect(http.StatusFound, url)
	}
}

func (h *UserHandler) oauthCallback(e ez.EZ) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")
		if !h.providers.Enabled(provider) {
			e.Fail(c, domain.NotFound("Unknown sign-in provider"))
			return
		}
		state, _ := c.Cookie(stateCookie)
		h.cookies.clearState(c)
		if state == "" || c.Query("state") != state {
			mdw.ObserveAuth("oauth_state")
			e.Fail(c, domain.Unauthorized("Invalid OAuth state"))
			return
		}
		if c.Query("error") != "" || c.Query("code") == "" {
			e.Fail(c, domain.Unauthorized("Sign-in was cancelled"))
			return
		}

		prof, err := h.providers.SignIn(c.Request.Context(), provider, c.Query("code"))
		if err != nil {
			h.log.Warn("oauth sign-in failed", zap.String("provider", provider), zap.Error(err))
			mdw.ObserveAuth("oauth_failed")
			e.Fail(c, domain.Unauthorized("Social sign-in failed"))
			return
		}
		sess, err := h.auth.SocialSignIn(c.Request.Context(), prof)
		if err != nil {
			e.Fail(c, err)
			return
		}
		mdw.ObserveAuth("oauth")
		h.cookies.setRefresh(c, sess.RefreshToken)
		if h.successURL != "" {
			c.Redirect(http.StatusFound, h.successURL)
			return
		}
		c.JSON(http.StatusOK, resp.OK("User logged in successfully", sessionOut{AccessToken: sess.AccessToken, User: sess.User}))
	}
}
