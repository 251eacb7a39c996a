package extractor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}_\-.]`)

// SanitizeFilename replaces anything but letters, digits, '_', '-' and '.'
// with '_' and makes sure the name ends in .pdf.
func SanitizeFilename(name string) string {
	name = unsafeFilenameChars.ReplaceAllString(filepath.Base(name), "_")
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

// SaveUpload writes data under dir with a sanitized name. An existing file
// is never overwritten: name_1.pdf, name_2.pdf, ... are tried instead.
func SaveUpload(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload dir: %w", err)
	}

	clean := SanitizeFilename(name)
	ext := filepath.Ext(clean)
	stem := strings.TrimSuffix(clean, ext)

	path := filepath.Join(dir, clean)
	for counter := 1; ; counter++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			path = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, counter, ext))
			continue
		}
		if err != nil {
			return "", fmt.Errorf("creating upload file: %w", err)
		}

		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("writing upload file: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", err
		}
		return path, nil
	}
}
