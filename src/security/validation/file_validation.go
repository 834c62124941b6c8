// backend/src/security/validation/file_validation.go
package validation

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"
)

// isBinaryContent checks if a buffer contains binary control characters
// (like null bytes) which indicate the file is not a valid text CSV.
func isBinaryContent(buf []byte) bool {
	if bytes.IndexByte(buf, 0) != -1 {
		return true
	}
	return !utf8.Valid(buf)
}

// ValidateCSVContent inspects the leading bytes of an upload and rejects
// anything that is not plausibly a text CSV, then resets the read pointer so
// the parser sees the full file.
func ValidateCSVContent(file io.ReadSeeker) error {
	if file == nil {
		return fmt.Errorf("file is nil")
	}

	buffer := make([]byte, 1024)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file for content type checking: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to reset file read pointer: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("file is empty")
	}

	if isBinaryContent(buffer[:n]) {
		return fmt.Errorf("file appears to be binary, not text/CSV")
	}

	detected := http.DetectContentType(buffer[:n])
	detected = strings.ToLower(strings.Split(detected, ";")[0])
	switch detected {
	case "text/plain", "text/csv", "application/csv":
		return nil
	}
	return fmt.Errorf("detected file content type '%s' is not allowed", detected)
}
