package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// File 是待上传的图片
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Uploader 上传文件并返回可公开访问的 URL
type Uploader interface {
	Upload(ctx context.Context, f *File) (string, error)
}

// ObjectName 生成 folder/yyyy/mm/dd/<uuid>-<name> 形式的对象名
func ObjectName(folder, filename string, now time.Time) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" {
		base = "image"
	}
	base = strings.Map(func(r rune) rune {
		if r == ' ' || r == '?' || r == '#' || r == '%' {
			return '_'
		}
		return r
	}, base)
	return path.Join(folder, fmt.Sprintf("%04d/%02d/%02d", now.Year(), now.Month(), now.Day()), uuid.NewString()+"-"+base)
}

// Disabled 在未配置对象存储时使用，任何上传都会失败
type Disabled struct{}

var ErrStorageDisabled = errors.New("image storage is not configured")

func (Disabled) Upload(context.Context, *File) (string, error) { return "", ErrStorageDisabled }
