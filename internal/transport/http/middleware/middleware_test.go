package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"go-gin-gorm-notes/internal/core/auth"
	"go-gin-gorm-notes/internal/domain"
	"go-gin-gorm-notes/internal/transport/http/ez"
)

type fakeAuth struct {
	users map[string]*domain.User // token -> user
	kinds []auth.Kind
}

func (f *fakeAuth) Authenticate(_ context.Context, kind auth.Kind, token string) (*domain.User, error) {
	f.kinds = append(f.kinds, kind)
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, domain.Unauthorized("Invalid token")
}

func newAuthEngine(a Authenticator, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthJWT(a, "refreshToken", roles...), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ez.KeyUserID)+"/"+c.GetString(ez.KeyRole))
	})
	return r
}

func TestAuthJWT(t *testing.T) {
	fa := &fakeAuth{users: map[string]*domain.User{
		"good":   {ID: "u1", Role: domain.RoleUser},
		"cookie": {ID: "u2", Role: domain.RoleUser},
		"admin":  {ID: "u3", Role: domain.RoleAdmin},
	}}
	r := newAuthEngine(fa)

	do := func(header, cookie string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: "refreshToken", Value: cookie})
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do("Bearer good", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1/user", w.Body.String())

	w = do("", "cookie")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u2/user", w.Body.String())
	assert.Equal(t, []auth.Kind{auth.KindAccess, auth.KindRefresh}, fa.kinds)

	assert.Equal(t, http.StatusUnauthorized, do("", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do("Bearer nope", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do("Basic good", "").Code)
}

func TestAuthJWT_Roles(t *testing.T) {
	fa := &fakeAuth{users: map[string]*domain.User{
		"user":  {ID: "u1", Role: domain.RoleUser},
		"admin": {ID: "u2", Role: domain.RoleAdmin},
	}}
	r := newAuthEngine(fa, domain.RoleAdmin)

	for token, want := range map[string]int{"user": http.StatusForbidden, "admin": http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, token)
	}
}

func TestRateLimitPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", RateLimitPerIP(0.001, 2), func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, hit("10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.2"))
}

func TestRequestIDAndAccessLog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core)))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping?password=hunter2&q=1", nil)
	req.Header.Set(KeyRequestID, "rid-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "rid-1", w.Header().Get(KeyRequestID))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "rid-1", fields["rid"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.Equal(t, map[string][]string{"password": {"****"}, "q": {"1"}}, fields["query"])
}

func TestRequestID_ReplacesUnsafeValue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(KeyRequestID, "bad id\r\n<script>")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	rid := w.Header().Get(KeyRequestID)
	assert.NotEqual(t, "bad id\r\n<script>", rid)
	assert.Len(t, rid, 36)
	assert.Equal(t, rid, w.Body.String())
}

func TestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/slow", Timeout(10*time.Millisecond), func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestTimeout_ClientCancelIsNot504(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/slow", Timeout(time.Minute), func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil).WithContext(ctx))
	assert.NotEqual(t, http.StatusGatewayTimeout, w.Code)
}

func TestConcurrencyLimit_BusyAfterWait(t *testing.T) {
	gin.SetMode(gin.TestMode)
	started, release := make(chan struct{}), make(chan struct{})
	r := gin.New()
	r.GET("/work", ConcurrencyLimit(1, 20*time.Millisecond), func(c *gin.Context) {
		if c.Query("block") != "" {
			close(started)
			<-release
		}
		c.Status(http.StatusOK)
	})

	done := make(chan int)
	go func() {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/work?block=1", nil))
		done <- w.Code
	}()
	<-started

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/work", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	close(release)
	assert.Equal(t, http.StatusOK, <-done)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/work", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMaxBodyBytes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(MaxBodyBytes(16))
	type in struct {
		Title string `json:"title"`
	}
	ez.RegisterAction(ez.New(r.Group(""), ez.Options{}), ez.Action[in, in]{
		Method: http.MethodPost, Path: "/n", Binder: ez.BindJSON,
		Handler: func(_ *gin.Context, v *in) (in, error) { return *v, nil },
	})
	big := `{"title":"` + string(bytes.Repeat([]byte("x"), 64)) + `"}`

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/n", bytes.NewBufferString(`{"title":"a"}`)))
	assert.Equal(t, http.StatusOK, w.Code)

	// 声明了长度
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/n", bytes.NewBufferString(big)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	// 未声明长度，读到上限才发现
	req := httptest.NewRequest(http.MethodPost, "/n", bytes.NewBufferString(big))
	req.ContentLength = -1
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
