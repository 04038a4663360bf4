package rules

import (
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// mimeByExtension is a best-effort static table covering the extensions the
// default categories know about. Unknown extensions never match a mimeType
// rule.
var mimeByExtension = map[string]string{
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"txt":  "text/plain",
	"rtf":  "application/rtf",
	"md":   "text/markdown",
	"csv":  "text/csv",
	"html": "text/html",
	"json": "application/json",
	"xml":  "application/xml",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"bmp":  "image/bmp",
	"ico":  "image/x-icon",
	"tiff": "image/tiff",
	"heic": "image/heic",
	"mp4":  "video/mp4",
	"mkv":  "video/x-matroska",
	"avi":  "video/x-msvideo",
	"mov":  "video/quicktime",
	"webm": "video/webm",
	"mp3":  "audio/mpeg",
	"flac": "audio/flac",
	"wav":  "audio/wav",
	"aac":  "audio/aac",
	"ogg":  "audio/ogg",
	"m4a":  "audio/mp4",
	"zip":  "application/zip",
	"rar":  "application/vnd.rar",
	"7z":   "application/x-7z-compressed",
	"tar":  "application/x-tar",
	"gz":   "application/gzip",
	"bz2":  "application/x-bzip2",
	"xz":   "application/x-xz",
}

// DetectMimeType derives a MIME type for a file. The static extension table
// is consulted first; when the extension is unknown and the file is readable,
// the content is sniffed. Returns "" when no type can be derived.
func DetectMimeType(path, extension string) string {
	ext := strings.ToLower(strings.TrimPrefix(extension, "."))
	if mt, ok := mimeByExtension[ext]; ok {
		return mt
	}

	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return ""
	}
	// Strip parameters such as "; charset=utf-8" so rule patterns can use
	// bare types.
	base, _, _ := strings.Cut(mt.String(), ";")
	return strings.TrimSpace(base)
}
