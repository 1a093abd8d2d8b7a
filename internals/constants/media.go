package constants

import (
	"path/filepath"
	"strings"
)

type MediaKind int

const (
	MediaOther MediaKind = iota
	MediaImage
	MediaAudio
	MediaVideo
	MediaDocument
)

func DetectMediaKind(filename string) MediaKind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".webp":
		return MediaImage
	case ".mp3", ".wav", ".ogg", ".m4a":
		return MediaAudio
	case ".mp4", ".webm", ".mov", ".mkv":
		return MediaVideo
	case ".pdf", ".doc", ".docx", ".ppt", ".pptx":
		return MediaDocument
	default:
		return MediaOther
	}
}
