// Package extractor pulls plain text out of uploaded PDFs and stores the
// uploads on disk.
package extractor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"pdf-rag-be/internal/pkg/logger"
	"pdf-rag-be/pkg/ragerror"

	"github.com/ledongthuc/pdf"
)

const (
	logModule = "pdf_processor"

	bytesPerMB = 1024 * 1024
)

var multiSpace = regexp.MustCompile(` +`)

// Document is the extracted text of one PDF.
type Document struct {
	Text     string
	NumPages int
}

// FileInfo summarizes a PDF on disk without indexing it.
type FileInfo struct {
	Filename  string  `json:"filename"`
	SizeBytes int64   `json:"size_bytes"`
	SizeMB    float64 `json:"size_mb"`
	NumPages  int     `json:"num_pages"`
	HasText   bool    `json:"has_text"`
}

type Extractor struct {
	maxBytes int64
	logger   logger.ILogger
}

func New(maxFileSizeMB int, log logger.ILogger) *Extractor {
	return &Extractor{maxBytes: int64(maxFileSizeMB) * bytesPerMB, logger: log}
}

// MaxBytes is the upload size limit.
func (e *Extractor) MaxBytes() int64 { return e.maxBytes }

// Extract reads every page of raw, skipping pages that fail or carry no
// text, and returns the cleaned text. declaredSize is the size the client
// claimed; either it or len(raw) over the limit rejects the file.
func (e *Extractor) Extract(raw []byte, declaredSize int64) (*Document, error) {
	size := max(declaredSize, int64(len(raw)))
	if size > e.maxBytes {
		e.logger.Error(logModule, "Uploaded file too large", map[string]interface{}{"bytes": size})
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ragerror.ErrFileTooLarge, size, e.maxBytes)
	}

	reader, err := openReader(raw)
	if err != nil {
		e.logger.Error(logModule, "Error reading PDF", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("%w: %v", ragerror.ErrUnreadable, err)
	}

	numPages := reader.NumPage()
	if numPages == 0 {
		e.logger.Warn(logModule, "PDF has no pages", nil)
		return nil, fmt.Errorf("%w: no pages", ragerror.ErrNoText)
	}

	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		text, err := pageText(reader, i)
		if err != nil {
			e.logger.Warn(logModule, "Error extracting text from page", map[string]interface{}{
				"page":  i,
				"error": err.Error(),
			})
			continue
		}
		if strings.TrimSpace(text) == "" {
			e.logger.Warn(logModule, "No text extracted from page", map[string]interface{}{"page": i})
			continue
		}
		pages = append(pages, text)
	}

	if len(pages) == 0 {
		e.logger.Error(logModule, "No text could be extracted from PDF", nil)
		return nil, ragerror.ErrNoText
	}

	text := CleanText(strings.Join(pages, "\n\n"))
	e.logger.Info(logModule, "Successfully extracted text from PDF", map[string]interface{}{
		"characters": len([]rune(text)),
		"pages":      numPages,
	})
	return &Document{Text: text, NumPages: numPages}, nil
}

// ExtractFile is Extract for a file already on disk.
func (e *Extractor) ExtractFile(path string) (*Document, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ragerror.ErrUnreadable, err)
	}
	if stat.Size() > e.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ragerror.ErrFileTooLarge, stat.Size(), e.maxBytes)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ragerror.ErrUnreadable, err)
	}
	return e.Extract(raw, stat.Size())
}

// Info reports page count and whether any of the first three pages has
// text.
func (e *Extractor) Info(path string) (*FileInfo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	reader, err := openReader(raw)
	if err != nil {
		return nil, err
	}

	info := &FileInfo{
		Filename:  filepath.Base(path),
		SizeBytes: int64(len(raw)),
		SizeMB:    RoundMB(int64(len(raw))),
		NumPages:  reader.NumPage(),
	}
	for i := 1; i <= min(3, info.NumPages); i++ {
		if text, err := pageText(reader, i); err == nil && strings.TrimSpace(text) != "" {
			info.HasText = true
			break
		}
	}
	return info, nil
}

// CleanText trims every line, drops blank lines and collapses runs of
// spaces.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return multiSpace.ReplaceAllString(strings.Join(kept, "\n"), " ")
}

// openReader guards against the parser panicking on malformed input.
func openReader(raw []byte) (reader *pdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			reader, err = nil, fmt.Errorf("malformed PDF: %v", r)
		}
	}()
	return pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
}

func pageText(reader *pdf.Reader, n int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("page %d: %v", n, r)
		}
	}()
	page := reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

// RoundMB converts bytes to megabytes rounded to two decimals.
func RoundMB(size int64) float64 {
	return float64(int64(float64(size)/bytesPerMB*100+0.5)) / 100
}
