// file: internals/helpers/storage/blob.go
package storage

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"lingoschool_backend/internals/configs"
)

/*
BlobStore adalah facade upload/hapus yang seragam untuk controller.
Objek disimpan di bawah folder bernama (units, videos, ...); hapus cukup dengan URL publik.
*/
type BlobStore interface {
	Upload(ctx context.Context, folder string, fh *multipart.FileHeader) (publicURL string, err error)
	DeleteByURL(ctx context.Context, publicURL string) error
}

// maxUploadSize guard ringan di controller
const maxUploadSize = int64(50 * 1024 * 1024)

// New memilih driver dari Config.
func New(ctx context.Context, cfg configs.StorageConfig) (BlobStore, error) {
	switch cfg.Driver {
	case "oss":
		return NewOSSStore(cfg)
	case "b2":
		return NewB2Store(ctx, cfg)
	case "memory", "":
		return NewMemoryStore("https://media.local"), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

// buildObjectKey: <prefix>/<folder>/<yyyy>/<mm>/<uuid><ext>
func buildObjectKey(prefix, folder, ext string, now time.Time) string {
	parts := []string{}
	if p := strings.Trim(prefix, "/"); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts, strings.Trim(folder, "/"), now.Format("2006"), now.Format("01"), uuid.NewString()+ext)
	return path.Join(parts...)
}

// keyFromURL: path URL tanpa "/" awal, setelah membuang prefix khusus driver.
func keyFromURL(publicURL, stripPrefix string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(publicURL))
	if err != nil || u.Path == "" {
		return "", fmt.Errorf("invalid public url %q", publicURL)
	}
	key, _ := url.PathUnescape(strings.TrimPrefix(u.Path, "/"))
	key = strings.TrimPrefix(key, strings.Trim(stripPrefix, "/")+"/")
	if key == "" {
		return "", fmt.Errorf("empty object key in %q", publicURL)
	}
	return key, nil
}

// FormFile mengambil file opsional dari multipart; nil kalau tidak ada.
func FormFile(c *fiber.Ctx, field string) (*multipart.FileHeader, error) {
	if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	if fh.Size > maxUploadSize {
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge, "file too large")
	}
	return fh, nil
}

// Cleanup menghapus objek lama setelah DB commit; gagal hapus cukup di-log.
func Cleanup(ctx context.Context, store BlobStore, urls ...*string) {
	for _, u := range urls {
		if u == nil || strings.TrimSpace(*u) == "" {
			continue
		}
		if err := store.DeleteByURL(ctx, *u); err != nil {
			log.Printf("[storage] cleanup %s: %v", *u, err)
		}
	}
}
