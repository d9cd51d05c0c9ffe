package uploadstore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jmorelli/chatdocs/internal/domain/chat"
)

// MinioStore archives raw uploads in any S3-compatible bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewMinioStore constructs the store.
func NewMinioStore(endpoint, accessKey, secretKey, bucket, region string, logger *slog.Logger) (*MinioStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cleanEndpoint := sanitizeEndpoint(endpoint)
	useSSL := strings.HasPrefix(strings.ToLower(endpoint), "https")
	client, err := minio.New(cleanEndpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init upload store client: %w", err)
	}
	return &MinioStore{client: client, bucket: bucket, logger: logger.With("component", "uploadstore.minio")}, nil
}

func (s *MinioStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err == nil && exists {
		return nil
	}
	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	return nil
}

// Put uploads the raw file bytes.
func (s *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	reader := bytes.NewReader(data)
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType:      contentType,
		DisableMultipart: len(data) < 5*1024*1024, // small uploads as single part
	})
	if err != nil {
		return err
	}
	s.logger.Debug("archived upload", "key", key, "bytes", len(data))
	return nil
}

var _ chat.ObjectStore = (*MinioStore)(nil)

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if strings.Contains(raw, "/") {
		parts := strings.Split(raw, "/")
		raw = parts[0]
	}
	return raw
}
