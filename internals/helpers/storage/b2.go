package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/kurin/blazer/b2"

	"lingoschool_backend/internals/configs"
)

// B2Store: implementasi BlobStore berbasis Backblaze B2.
type B2Store struct {
	Client *b2.Client
	Bucket *b2.Bucket
	now    func() time.Time
}

func NewB2Store(ctx context.Context, cfg configs.StorageConfig) (*B2Store, error) {
	if cfg.B2AccountID == "" || cfg.B2AppKey == "" || cfg.B2Bucket == "" {
		return nil, fmt.Errorf("B2_* env incomplete")
	}
	client, err := b2.NewClient(ctx, cfg.B2AccountID, cfg.B2AppKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create b2 client: %w", err)
	}
	bucket, err := client.Bucket(ctx, cfg.B2Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}
	return &B2Store{Client: client, Bucket: bucket, now: time.Now}, nil
}

func (s *B2Store) Upload(ctx context.Context, folder string, fh *multipart.FileHeader) (string, error) {
	f, err := prepareUpload(fh)
	if err != nil {
		return "", err
	}
	key := buildObjectKey("", folder, f.ext, s.now())
	obj := s.Bucket.Object(key)
	w := obj.NewWriter(ctx).WithAttrs(&b2.Attrs{ContentType: f.contentType})

	if _, err := io.Copy(w, bytes.NewReader(f.body)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}
	return obj.URL(), nil
}

// URL B2: <base>/file/<bucket>/<key>
func (s *B2Store) DeleteByURL(ctx context.Context, publicURL string) error {
	key, err := keyFromURL(publicURL, "file/"+s.Bucket.Name())
	if err != nil {
		return err
	}
	return s.Bucket.Object(key).Delete(ctx)
}
