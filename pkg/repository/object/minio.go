package object

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/chatstack/chat-backend/config"
)

type minioStorage struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// NewMinIOStorage creates a Storage implementation backed by MinIO,
// creating the bucket if it does not exist yet.
func NewMinIOStorage(ctx context.Context, cfg config.MinioConfig, logger *zap.Logger) (Storage, error) {
	logger = logger.With(
		zap.String("host:port", cfg.Host+":"+cfg.Port),
		zap.String("bucket", cfg.BucketName),
	)

	client, err := minio.New(cfg.Host+":"+cfg.Port, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.User, cfg.Password, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to MinIO: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("checking bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("creating bucket: %w", err)
		}
		logger.Info("Successfully created bucket")
	} else {
		logger.Info("Bucket already exists")
	}

	return &minioStorage{
		client: client,
		bucket: cfg.BucketName,
		logger: logger,
	}, nil
}

func (m *minioStorage) SaveFile(ctx context.Context, path string, content []byte) error {
	_, err := m.client.PutObject(
		ctx,
		m.bucket,
		path,
		bytes.NewReader(content),
		int64(len(content)),
		minio.PutObjectOptions{},
	)
	if err != nil {
		m.logger.Error("Failed to upload file to MinIO", zap.String("path", path), zap.Error(err))
		return err
	}
	return nil
}

func (m *minioStorage) ReadFile(ctx context.Context, path string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}

func (m *minioStorage) DeleteFile(ctx context.Context, path string) (DeleteStatus, error) {
	// RemoveObject succeeds on missing keys, so probe first to report
	// the accurate variant.
	_, err := m.client.StatObject(ctx, m.bucket, path, minio.StatObjectOptions{})
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			m.logger.Debug("blob already absent", zap.String("path", path))
			return AlreadyAbsent, nil
		}
		return AlreadyAbsent, err
	}

	if err := m.client.RemoveObject(ctx, m.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		m.logger.Error("Failed to delete file from MinIO", zap.String("path", path), zap.Error(err))
		return AlreadyAbsent, err
	}
	return Deleted, nil
}
