package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
)

// errMiss 让 GetOrLoad 跳过回写，不存在的记录不进缓存
var errMiss = errors.New("cache: miss")

// GetOrLoadJSON 读穿缓存 T；load 返回 (nil, nil) 表示记录不存在，结果同样是 (nil, nil)
func GetOrLoadJSON[T any](c *Cache, ctx context.Context, key string, ttl time.Duration, load func(context.Context) (*T, error)) (*T, error) {
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		switch {
		case err != nil:
			return nil, err
		case v == nil:
			return nil, errMiss
		}
		return json.Marshal(v)
	})
	if errors.Is(err, errMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// 旧版本写入过 null
	if string(b) == "null" {
		return nil, nil
	}
	out := new(T)
	if err := json.Unmarshal(b, out); err != nil {
		return nil, err
	}
	return out, nil
}
