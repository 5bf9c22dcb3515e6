package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"go-gin-gorm-notes/internal/core/config"
)

type MinIOClient struct {
	client    *minio.Client
	bucket    string
	folder    string
	publicURL string
	log       *zap.Logger
}

func NewMinIOClient(cfg config.Storage, l *zap.Logger) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}
	public := cfg.PublicURL
	if public == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		public = scheme + "://" + cfg.Endpoint
	}
	return &MinIOClient{
		client:    client,
		bucket:    cfg.Bucket,
		folder:    cfg.Folder,
		publicURL: strings.TrimRight(public, "/"),
		log:       l.Named("storage"),
	}, nil
}

func (m *MinIOClient) Upload(ctx context.Context, f *File) (string, error) {
	name := ObjectName(m.folder, f.Name, time.Now())
	_, err := m.client.PutObject(ctx, m.bucket, name, f.Body, f.Size, minio.PutObjectOptions{
		ContentType: f.ContentType,
	})
	if err != nil {
		m.log.Error("minio upload failed", zap.Error(err),
			zap.String("object", name), zap.Int64("size", f.Size), zap.String("bucket", m.bucket))
		return "", err
	}
	m.log.Info("minio upload success",
		zap.String("object", name), zap.Int64("size", f.Size), zap.String("content_type", f.ContentType))
	return m.URL(name), nil
}

func (m *MinIOClient) URL(objectName string) string {
	return m.publicURL + "/" + m.bucket + "/" + objectName
}

func (m *MinIOClient) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed creating bucket %s: %w", m.bucket, err)
	}
	return nil
}
