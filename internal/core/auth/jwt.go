package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken 覆盖所有校验失败：过期、格式错误、签名不符、类型不符
var ErrInvalidToken = errors.New("invalid token")

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Payload 是两种令牌共同携带的用户信息
type Payload struct {
	UID   string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"` // "user" or "admin"
	Image string `json:"image,omitempty"`
}

type Claims struct {
	Payload
	Kind Kind `json:"typ"`
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Pair struct {
	Access  string
	Refresh string
}

func (j *JWTer) ttl(k Kind) time.Duration {
	if k == KindRefresh {
		return j.RefreshTTL
	}
	return j.AccessTTL
}

func (j *JWTer) Issue(k Kind, p Payload) (string, error) {
	now := time.Now()
	claims := Claims{
		Payload: p,
		Kind:    k,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Subject:   p.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl(k))),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.Secret)
}

func (j *JWTer) IssuePair(p Payload) (Pair, error) {
	access, err := j.Issue(KindAccess, p)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := j.Issue(KindRefresh, p)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// Parse verifies signature, issuer, expiry and kind. Any failure is reported as
// ErrInvalidToken.
func (j *JWTer) Parse(k Kind, tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithExpirationRequired(), jwt.WithLeeway(30*time.Second))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, ErrInvalidToken
	}
	if c.Kind != k {
		return nil, fmt.Errorf("%w: want %s token, got %q", ErrInvalidToken, k, c.Kind)
	}
	if c.UID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return c, nil
}
