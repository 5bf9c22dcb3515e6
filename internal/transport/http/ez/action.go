package ez

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"go-gin-gorm-notes/internal/core/storage"
	"go-gin-gorm-notes/internal/domain"
	resp "go-gin-gorm-notes/internal/transport/http/response"
)

// 上下文 key，由鉴权中间件写入
const (
	KeyUserID = "userId"
	KeyRole   = "role"
)

type Options struct {
	Log       *zap.Logger
	ShowStack bool // 非生产环境在错误响应里带上调用栈
}

type EZ struct {
	g   *gin.RouterGroup
	opt Options
}

func New(g *gin.RouterGroup, opt Options) EZ {
	if opt.Log == nil {
		opt.Log = zap.NewNop()
	}
	return EZ{g: g, opt: opt}
}

// Group 创建子分组，可附加中间件（例如登录限流）
func (e EZ) Group(path string, mw ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group(path, mw...), opt: e.opt}
}

// Raw 返回底层分组，用于重定向等非 JSON 接口
func (e EZ) Raw() *gin.RouterGroup { return e.g }

// 绑定方式
type Binder string

const (
	BindJSON      Binder = "json"      // 从 JSON 绑定
	BindQuery     Binder = "query"     // 从 URL ?a=b 绑定
	BindNone      Binder = "none"      // 不绑定，自己从 c.Param / c.Query 取
	BindMultipart Binder = "multipart" // multipart 的 data 字段（JSON），也接受纯 JSON 请求体
)

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string   // "GET" | "POST" | "PUT" | "DELETE"
	Path    string   // 例："/user/login"、"/note/:id"
	Binder  Binder   // 绑定方式
	Auth    bool     // 是否要求登录（检查 userId）
	Roles   []string // 限定角色（可选）
	Status  int      // 成功状态码，默认 200
	Message string   // 成功提示
	Handler func(c *gin.Context, in *I) (O, error)
}

// pager 由分页结果实现，data/meta 分开放进响应
type pager interface {
	Envelope() (data any, meta any)
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		if a.Auth {
			if c.GetString(KeyUserID) == "" {
				resp.Abort(c, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if len(a.Roles) > 0 && !hasRole(c.GetString(KeyRole), a.Roles) {
				resp.Abort(c, http.StatusForbidden, "Forbidden")
				return
			}
		}

		// 2) 绑定入参
		var in I
		if err := bind(c, a.Binder, &in); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				resp.Abort(c, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			resp.Abort(c, http.StatusBadRequest, err.Error())
			return
		}

		// 3) 执行
		out, err := a.Handler(c, &in)

		// 4) 统一错误映射
		if err != nil {
			e.fail(c, err)
			return
		}
		if p, ok := any(out).(pager); ok {
			data, meta := p.Envelope()
			c.JSON(status, resp.Page(a.Message, data, meta))
			return
		}
		c.JSON(status, resp.OK(a.Message, out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

func hasRole(role string, roles []string) bool {
	for _, r := range roles {
		if role == r {
			return true
		}
	}
	return false
}

func bind(c *gin.Context, b Binder, in any) error {
	switch b {
	case BindJSON:
		return c.ShouldBindJSON(in)
	case BindQuery:
		return c.ShouldBindQuery(in)
	case BindMultipart:
		if strings.HasPrefix(c.ContentType(), "application/json") {
			return c.ShouldBindJSON(in)
		}
		raw := c.PostForm("data")
		if raw == "" {
			return nil
		}
		if err := json.Unmarshal([]byte(raw), in); err != nil {
			return errors.New("invalid data field: " + err.Error())
		}
		return nil
	default: // BindNone: 不绑定
		return nil
	}
}

// Fail 把错误写成统一响应，供非 Action 的 handler 复用
func (e EZ) Fail(c *gin.Context, err error) { e.fail(c, err) }

func (e EZ) fail(c *gin.Context, err error) {
	code := domain.CodeOf(err)
	r := resp.Error(code, "")
	var ae *domain.AppError
	if errors.As(err, &ae) {
		r.Message = resp.Error(code, ae.Msg).Message
		if e.opt.ShowStack {
			r.Stack = ae.Stack
		}
	}
	if code >= http.StatusInternalServerError {
		e.opt.Log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", code),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(code, r)
}

// FormImage 读取可选的图片文件字段；未上传时返回 (nil, nil, nil)
func FormImage(c *gin.Context, field string) (*storage.File, func(), error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, domain.BadRequest("invalid multipart form: " + err.Error())
	}
	return openImage(fh)
}

func openImage(fh *multipart.FileHeader) (*storage.File, func(), error) {
	ct := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") {
		return nil, func() {}, domain.BadRequest("Only image files are allowed")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, domain.Internal("read upload failed", err)
	}
	return &storage.File{Name: fh.Filename, ContentType: ct, Size: fh.Size, Body: f}, func() { _ = f.Close() }, nil
}
