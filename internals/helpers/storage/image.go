package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"lingoschool_backend/internals/constants"
)

// WebPOptions: batas resize + kualitas encode.
type WebPOptions struct {
	MaxW    int
	MaxH    int
	Quality float32
}

var defaultWebP = WebPOptions{MaxW: 1600, MaxH: 1600, Quality: 80}

type preparedFile struct {
	body        []byte
	contentType string
	ext         string
}

// prepareUpload: gambar → resize + WebP, selain itu dikirim apa adanya.
func prepareUpload(fh *multipart.FileHeader) (*preparedFile, error) {
	if fh == nil {
		return nil, fmt.Errorf("file not found")
	}
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	if constants.DetectMediaKind(fh.Filename) == constants.MediaImage {
		if out, err := convertToWebP(raw, defaultWebP); err == nil {
			return &preparedFile{body: out, contentType: "image/webp", ext: ".webp"}, nil
		}
		// decode gagal → simpan file asli
	}

	ct := fh.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(raw)
	}
	return &preparedFile{body: raw, contentType: ct, ext: strings.ToLower(filepath.Ext(fh.Filename))}, nil
}

func convertToWebP(raw []byte, opt WebPOptions) ([]byte, error) {
	img, err := decodeImage(raw)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() > opt.MaxW || b.Dy() > opt.MaxH {
		img = imaging.Fit(img, opt.MaxW, opt.MaxH, imaging.Lanczos)
	}
	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Quality: opt.Quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeImage(raw []byte) (image.Image, error) {
	if strings.Contains(http.DetectContentType(raw), "webp") {
		return webp.Decode(bytes.NewReader(raw))
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	return img, err
}
