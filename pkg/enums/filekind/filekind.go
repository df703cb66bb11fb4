package filekind

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type FileKind string

const (
	Video    FileKind = "video"
	Audio    FileKind = "audio"
	Image    FileKind = "image"
	PDF      FileKind = "pdf"
	APK      FileKind = "apk"
	Archive  FileKind = "archive"
	Document FileKind = "document"
)

// All lists the kinds in summary order.
var All = []FileKind{Video, Audio, Image, PDF, APK, Archive, Document}

var kindEmoji = map[FileKind]string{
	Video:    "🎬",
	Audio:    "🎵",
	Image:    "🖼️",
	PDF:      "📄",
	APK:      "📱",
	Archive:  "🗜️",
	Document: "📎",
}

func (k FileKind) String() string {
	return string(k)
}

func (k FileKind) Emoji() string {
	if e, ok := kindEmoji[k]; ok {
		return e
	}
	return kindEmoji[Document]
}

var extKinds = map[string]FileKind{
	".mp4": Video, ".mkv": Video, ".avi": Video, ".mov": Video, ".webm": Video,
	".flv": Video, ".3gp": Video, ".m4v": Video, ".ts": Video,
	".mp3": Audio, ".m4a": Audio, ".flac": Audio, ".wav": Audio, ".aac": Audio, ".ogg": Audio, ".opus": Audio,
	".jpg": Image, ".jpeg": Image, ".png": Image, ".gif": Image, ".webp": Image, ".bmp": Image,
	".pdf": PDF,
	".apk": APK,
	".zip": Archive, ".rar": Archive, ".7z": Archive, ".tar": Archive, ".gz": Archive,
}

// FromName detects the kind by file extension only.
func FromName(name string) (FileKind, bool) {
	k, ok := extKinds[strings.ToLower(filepath.Ext(name))]
	return k, ok
}

// FromMIME maps a mime type to a kind, defaulting to Document.
func FromMIME(mime string) FileKind {
	mime = strings.ToLower(mime)
	switch {
	case strings.HasPrefix(mime, "video/"):
		return Video
	case strings.HasPrefix(mime, "audio/"):
		return Audio
	case strings.HasPrefix(mime, "image/"):
		return Image
	case mime == "application/pdf":
		return PDF
	case mime == "application/vnd.android.package-archive":
		return APK
	case strings.Contains(mime, "zip"), strings.Contains(mime, "rar"), strings.Contains(mime, "7z"),
		strings.Contains(mime, "tar"), strings.Contains(mime, "gzip"):
		return Archive
	}
	return Document
}

// Detect uses the extension first and falls back to sniffing the file content.
func Detect(path string) FileKind {
	if k, ok := FromName(path); ok {
		return k
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return Document
	}
	return FromMIME(mt.String())
}
