// Package model defines the core domain models used throughout the application.
package model

import (
	"strings"
	"time"
)

// FileType is a coarse grouping of files derived from the extension.
type FileType string

// File type constants.
const (
	FileTypeDocument FileType = "document"
	FileTypeImage    FileType = "image"
	FileTypeVideo    FileType = "video"
	FileTypeAudio    FileType = "audio"
	FileTypeArchive  FileType = "archive"
	FileTypeCode     FileType = "code"
	FileTypeOther    FileType = "other"
)

// FileTypeFromExtension maps an extension (with or without leading dot) to a
// FileType. Unknown extensions map to FileTypeOther.
func FileTypeFromExtension(ext string) FileType {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx", "txt", "rtf", "odt", "ods", "odp":
		return FileTypeDocument
	case "jpg", "jpeg", "png", "gif", "webp", "svg", "bmp", "ico", "tiff", "heic":
		return FileTypeImage
	case "mp4", "mkv", "avi", "mov", "wmv", "flv", "webm", "m4v":
		return FileTypeVideo
	case "mp3", "flac", "wav", "aac", "ogg", "wma", "m4a":
		return FileTypeAudio
	case "zip", "rar", "7z", "tar", "gz", "bz2", "xz":
		return FileTypeArchive
	case "js", "ts", "jsx", "tsx", "py", "rs", "go", "java", "c", "cpp", "h", "hpp",
		"cs", "rb", "php", "swift", "kt", "scala", "html", "css", "scss", "json",
		"yaml", "yml", "xml", "md", "sql":
		return FileTypeCode
	default:
		return FileTypeOther
	}
}

// FileDescriptor is a read-only snapshot of one filesystem entry at scan
// time. It is never mutated after creation; classification annotates a copy.
type FileDescriptor struct {
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
	ID         string    `json:"id"`
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	Extension  string    `json:"extension"`
	FileType   FileType  `json:"file_type"`
	Category   string    `json:"category,omitempty"`
	Size       int64     `json:"size"`
}
