package api

import (
	"mime"
	"path/filepath"
	"strings"
)

const (
	pdfPlaceholder = "[PDF file uploaded - content would be extracted in production]"
	zipPlaceholder = "[ZIP file uploaded - content would be extracted in production]"
)

// ReferenceText turns an uploaded attachment into prompt context. Text files
// pass through as UTF-8; PDF and ZIP uploads yield a fixed placeholder.
// Anything else is ignored.
func ReferenceText(filename, contentType string, data []byte) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = ""
	}
	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case mediaType == "text/plain" || ext == ".txt":
		return strings.ToValidUTF8(string(data), "\uFFFD")
	case mediaType == "application/pdf" || ext == ".pdf":
		return pdfPlaceholder
	case ext == ".zip":
		return zipPlaceholder
	default:
		return ""
	}
}
