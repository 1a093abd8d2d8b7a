package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"lingoschool_backend/internals/configs"
)

// OSSStore: implementasi BlobStore berbasis Aliyun OSS.
type OSSStore struct {
	Bucket     *oss.Bucket
	BucketName string
	Endpoint   string
	Prefix     string
	now        func() time.Time
}

func NewOSSStore(cfg configs.StorageConfig) (*OSSStore, error) {
	endpoint := normalizeEndpoint(cfg.OSSEndpoint)
	if endpoint == "" || cfg.OSSAccessKey == "" || cfg.OSSSecretKey == "" || cfg.OSSBucket == "" {
		return nil, fmt.Errorf("ALI_OSS_* env incomplete")
	}
	cli, err := oss.New(endpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, fmt.Errorf("oss init: %w", err)
	}
	bucket, err := cli.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, fmt.Errorf("oss bucket: %w", err)
	}
	return &OSSStore{
		Bucket:     bucket,
		BucketName: cfg.OSSBucket,
		Endpoint:   endpoint,
		Prefix:     cfg.OSSPrefix,
		now:        time.Now,
	}, nil
}

func (s *OSSStore) Upload(ctx context.Context, folder string, fh *multipart.FileHeader) (string, error) {
	f, err := prepareUpload(fh)
	if err != nil {
		return "", err
	}
	key := buildObjectKey(s.Prefix, folder, f.ext, s.now())
	opts := []oss.Option{
		oss.ContentType(f.contentType),
		oss.CacheControl("public, max-age=31536000, immutable"),
		oss.WithContext(ctx),
	}
	if err := s.Bucket.PutObject(key, bytes.NewReader(f.body), opts...); err != nil {
		return "", fmt.Errorf("oss put %s: %w", key, err)
	}
	return s.PublicURL(key), nil
}

func (s *OSSStore) DeleteByURL(ctx context.Context, publicURL string) error {
	key, err := keyFromURL(publicURL, "")
	if err != nil {
		return err
	}
	return s.Bucket.DeleteObject(key, oss.WithContext(ctx))
}

func (s *OSSStore) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.%s/%s", s.BucketName, s.Endpoint, key)
}

func normalizeEndpoint(ep string) string {
	ep = strings.TrimSpace(ep)
	ep = strings.TrimPrefix(ep, "https://")
	ep = strings.TrimPrefix(ep, "http://")
	return strings.TrimSuffix(ep, "/")
}
