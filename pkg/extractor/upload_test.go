package extractor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"report.pdf", "report.pdf"},
		{"My Report (v2).PDF", "My_Report__v2_.PDF"},
		{"notes", "notes.pdf"},
		{"../../etc/passwd", "passwd.pdf"},
		{"résumé.pdf", "résumé.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), tt.in)
	}
}

func TestSaveUpload_NoClobber(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	first, err := SaveUpload(dir, "a b.pdf", []byte("one"))
	require.NoError(t, err)
	second, err := SaveUpload(dir, "a b.pdf", []byte("two"))
	require.NoError(t, err)
	third, err := SaveUpload(dir, "a_b.pdf", []byte("three"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "a_b.pdf"), first)
	assert.Equal(t, filepath.Join(dir, "a_b_1.pdf"), second)
	assert.Equal(t, filepath.Join(dir, "a_b_2.pdf"), third)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}
