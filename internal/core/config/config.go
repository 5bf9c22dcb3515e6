package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultPath = "./configs/config.local.yaml"

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

func (a App) IsProduction() bool { return strings.EqualFold(a.Env, "production") }

type Rotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate Rotate
}

type JWT struct {
	Secret             string
	Issuer             string
	AccessTokenTTLMin  int
	RefreshTokenTTLMin int
}

func (j JWT) AccessTTL() time.Duration  { return time.Duration(j.AccessTokenTTLMin) * time.Minute }
func (j JWT) RefreshTTL() time.Duration { return time.Duration(j.RefreshTokenTTLMin) * time.Minute }

type Auth struct {
	AdminEmail   string
	DefaultImage string
	CookieName   string
	CacheTTLSec  int
	LoginRPS     float64
	LoginBurst   int
	StateTTLMin  int
	SuccessURL   string // OAuth 回调成功后的前端地址（可选）
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Storage struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	PublicURL string
	Folder    string
}

func (s Storage) Enabled() bool { return s.Endpoint != "" && s.Bucket != "" }

type OAuthProvider struct {
	Enabled      bool
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       string
	ProfileURL   string
	AuthURL      string // 为空使用官方 endpoint
	TokenURL     string
}

type OAuth struct {
	GitHub OAuthProvider
	Google OAuthProvider
}

type CORS struct {
	AllowOrigins []string
}

type Config struct {
	App     App
	Log     Log
	JWT     JWT
	Auth    Auth
	DB      DB
	Redis   Redis `mapstructure:"redis"`
	Storage Storage
	OAuth   OAuth
	CORS    CORS
}

// Load 读取配置，失败直接退出（入口使用）
func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return c
}

// Read 读取 YAML + APP_ 前缀环境变量
func Read(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = defaultPath
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "notes")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 5000)
	v.SetDefault("app.http.readTimeoutSec", 10)
	v.SetDefault("app.http.writeTimeoutSec", 15)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.admin.port", 5001)

	v.SetDefault("log.level", "info")

	v.SetDefault("jwt.issuer", "notes")
	v.SetDefault("jwt.accessTokenTTLMin", 24*60)
	v.SetDefault("jwt.refreshTokenTTLMin", 7*24*60)

	v.SetDefault("auth.cookieName", "refreshToken")
	v.SetDefault("auth.cacheTTLSec", 60)
	v.SetDefault("auth.loginRPS", 5)
	v.SetDefault("auth.loginBurst", 10)
	v.SetDefault("auth.stateTTLMin", 10)
	v.SetDefault("auth.defaultImage", "https://images.unsplash.com/photo-1640960543409-dbe56ccc30e2?q=80&w=880&auto=format&fit=crop")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "notes.db")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 5)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")

	v.SetDefault("storage.folder", "notes")
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("oauth.github.scopes", "read:user,user:email")
	v.SetDefault("oauth.github.profileURL", "https://api.github.com/user")
	v.SetDefault("oauth.google.scopes", "openid,email,profile")
	v.SetDefault("oauth.google.profileURL", "https://www.googleapis.com/oauth2/v2/userinfo")

	v.SetDefault("cors.allowOrigins", []string{"http://localhost:3000"})
}
