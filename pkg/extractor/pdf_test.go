package extractor

import (
	"os"
	"path/filepath"
	"testing"

	"pdf-rag-be/internal/pkg/logger"
	"pdf-rag-be/pkg/extractor/pdftest"
	"pdf-rag-be/pkg/ragerror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	e := New(1, logger.NewNopLogger())

	doc, err := e.Extract(pdftest.Build("Hello   PDF world", "", "Second page"), 0)
	require.NoError(t, err)

	assert.Equal(t, 3, doc.NumPages)
	assert.Equal(t, "Hello PDF world\nSecond page", doc.Text)
}

func TestExtractor_Extract_TooLarge(t *testing.T) {
	e := New(1, logger.NewNopLogger())

	_, err := e.Extract(pdftest.Build("tiny"), 2*bytesPerMB)
	assert.ErrorIs(t, err, ragerror.ErrFileTooLarge)
	assert.ErrorIs(t, err, ragerror.ErrIngestion)

	_, err = e.Extract(make([]byte, bytesPerMB+1), 0)
	assert.ErrorIs(t, err, ragerror.ErrFileTooLarge)
}

func TestExtractor_Extract_Unreadable(t *testing.T) {
	e := New(1, logger.NewNopLogger())

	for _, raw := range [][]byte{nil, []byte("not a pdf at all"), []byte("%PDF-1.4\ngarbage")} {
		_, err := e.Extract(raw, 0)
		assert.ErrorIs(t, err, ragerror.ErrIngestion)
	}
}

func TestExtractor_Extract_NoText(t *testing.T) {
	e := New(1, logger.NewNopLogger())

	_, err := e.Extract(pdftest.Build("", "   "), 0)
	assert.ErrorIs(t, err, ragerror.ErrNoText)
}

func TestExtractor_ExtractFileAndInfo(t *testing.T) {
	e := New(1, logger.NewNopLogger())
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, pdftest.Build("first", "second"), 0o644))

	doc, err := e.ExtractFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", doc.Text)

	info, err := e.Info(path)
	require.NoError(t, err)
	assert.Equal(t, "doc.pdf", info.Filename)
	assert.Equal(t, 2, info.NumPages)
	assert.True(t, info.HasText)
	assert.Positive(t, info.SizeBytes)

	_, err = e.ExtractFile(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, ragerror.ErrUnreadable)
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  a  \n\n\n b   c \n", "a\nb c"},
		{"one\ntwo", "one\ntwo"},
		{"\t tabbed\t", "tabbed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanText(tt.in))
	}
}
