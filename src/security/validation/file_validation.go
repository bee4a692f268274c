package validation

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/username/extratodb/src/logger"
)

// AllowedClientContentTypes is a map for quick lookup of allowed
// client-declared MIME types for statement uploads.
var AllowedClientContentTypes = map[string]bool{
	"application/pdf":          true,
	"application/x-pdf":        true,
	"application/octet-stream": true, // fallback; the magic-byte check still applies
}

// pdfMagic is the signature every PDF file starts with.
var pdfMagic = []byte("%PDF-")

// ValidateClientContentType checks the Content-Type header provided by the client.
func ValidateClientContentType(contentType string) error {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if !AllowedClientContentTypes[mediaType] {
		if logger.L != nil {
			logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		}
		return fmt.Errorf("client-declared file type '%s' is not allowed for PDF upload", contentType)
	}
	return nil
}

// ValidateFileContentByMagicBytes checks the actual file content signature.
// The read pointer is reset so the parser can read the full file afterwards.
func ValidateFileContentByMagicBytes(file io.ReadSeeker) error {
	if file == nil {
		return fmt.Errorf("file is nil")
	}

	buffer := make([]byte, len(pdfMagic))
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file for content type checking: %w", err)
	}

	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return fmt.Errorf("failed to reset file read pointer: %w", seekErr)
	}

	if !bytes.HasPrefix(buffer[:n], pdfMagic) {
		if logger.L != nil {
			logger.L.Warn("Uploaded file does not carry a PDF signature")
		}
		return fmt.Errorf("file content is not a PDF document")
	}
	return nil
}
