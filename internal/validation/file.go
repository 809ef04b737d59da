package validation

import (
	"mime"
	"strings"
)

const (
	// MaxUploadBytes is the hard ceiling enforced at submission.
	MaxUploadBytes int64 = 10 * 1024 * 1024
	// LargeFileWarningBytes only triggers an advisory warning in preview.
	LargeFileWarningBytes int64 = 50 * 1024 * 1024
)

var allowedFileTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/jpg":       {},
	"image/png":       {},
	"image/gif":       {},
	"image/svg+xml":   {},
	"application/pdf": {},
}

// FileMeta describes an attachment without its bytes.
type FileMeta struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// NormalizeContentType strips parameters and lowercases the media type.
func NormalizeContentType(contentType string) string {
	trimmed := strings.TrimSpace(contentType)
	if trimmed == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(trimmed)
	if err != nil {
		return strings.ToLower(trimmed)
	}
	return mediaType
}

// AllowedFileType reports whether the content type is an accepted logo format.
func AllowedFileType(contentType string) bool {
	_, allowed := allowedFileTypes[NormalizeContentType(contentType)]
	return allowed
}

// ValidateFile is the submission-time rule. No file is valid.
func ValidateFile(meta *FileMeta) Verdict {
	if meta == nil {
		return ok()
	}
	if !AllowedFileType(meta.ContentType) || meta.Size > MaxUploadBytes {
		return fail(MsgFile)
	}
	return ok()
}

// InspectFile is the preview-time check: wrong types are rejected, very
// large files only produce a warning.
func InspectFile(meta *FileMeta) Verdict {
	if meta == nil {
		return ok()
	}
	if !AllowedFileType(meta.ContentType) {
		return fail(MsgFileType)
	}
	v := ok()
	if meta.Size > LargeFileWarningBytes {
		v.Warning = MsgLargeFileWarning
	}
	return v
}
