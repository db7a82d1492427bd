package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/gatherly/backend/internal/config"
	"github.com/gatherly/backend/pkg/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOClient stores photo binaries. The rest of the system only ever sees
// the resulting public object URL.
type MinIOClient struct {
	client         *minio.Client
	bucket         string
	publicEndpoint string
	useSSL         bool
}

func NewMinIOClient(cfg config.MinIOConfig) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	return &MinIOClient{
		client:         client,
		bucket:         cfg.Bucket,
		publicEndpoint: cfg.PublicEndpoint,
		useSSL:         cfg.UseSSL,
	}, nil
}

func (m *MinIOClient) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
}

func (m *MinIOClient) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		logger.Error("minio_upload_failed", err, map[string]interface{}{
			"object_name": objectName,
			"size":        size,
			"bucket":      m.bucket,
		})
		return err
	}
	logger.Info("minio_upload_success", map[string]interface{}{
		"object_name": objectName,
		"size":        size,
		"bucket":      m.bucket,
	})
	return nil
}

// ObjectURL builds the public URL recorded on the Photo row.
func (m *MinIOClient) ObjectURL(objectName string) string {
	scheme := "http"
	if m.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, m.publicEndpoint, m.bucket, objectName)
}
