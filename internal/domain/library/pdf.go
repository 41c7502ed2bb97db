package library

import (
	"bytes"
	"mime"
	"path/filepath"
	"strings"
)

var pdfMagic = []byte("%PDF-")

// IsPDF accepts a file when its name, declared content type or leading bytes
// identify it as a PDF.
func IsPDF(filename, mimeType string, content []byte) bool {
	if strings.EqualFold(filepath.Ext(strings.TrimSpace(filename)), ".pdf") {
		return true
	}
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil && mediaType == "application/pdf" {
		return true
	}
	return bytes.HasPrefix(content, pdfMagic)
}
