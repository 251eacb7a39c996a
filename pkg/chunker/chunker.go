package chunker

import (
	"fmt"
	"maps"
	"strings"
	"unicode/utf8"

	"pdf-rag-be/pkg/ragerror"
)

// Metadata keys attached to every chunk.
const (
	MetaDocumentName   = "document_name"
	MetaFilePath       = "file_path"
	MetaDocumentLength = "document_length"
	MetaChunkIndex     = "chunk_index"
	MetaChunkSize      = "chunk_size"
	MetaStartChar      = "start_char"
	MetaEndChar        = "end_char"
)

const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// Chunk is one window of document text plus its positional metadata.
type Chunk struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// Chunker splits text into fixed-size overlapping character windows.
// Boundaries may fall mid-word or mid-sentence: there is no sentence or
// paragraph awareness.
type Chunker struct {
	size    int
	overlap int
}

// New validates the window parameters. overlap must be smaller than size,
// otherwise the window would never advance.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ragerror.ErrConfiguration, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap must be non-negative, got %d", ragerror.ErrConfiguration, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap (%d) must be smaller than chunk size (%d)", ragerror.ErrConfiguration, overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

func (c *Chunker) Size() int    { return c.size }
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk splits text into windows of c.size characters advancing by
// c.size-c.overlap. Offsets are rune offsets into the trimmed text.
// Empty or whitespace-only input yields an empty slice.
func (c *Chunker) Chunk(text string, base map[string]any) []Chunk {
	chunks := []Chunk{}
	text = strings.TrimSpace(text)
	if text == "" {
		return chunks
	}

	runes := []rune(text)
	total := len(runes)
	step := c.size - c.overlap

	for start := 0; start < total; start += step {
		end := start + c.size
		if end > total {
			end = total
		}

		window := string(runes[start:end])
		trimmed := strings.TrimSpace(window)
		if trimmed == "" {
			continue
		}

		meta := make(map[string]any, len(base)+4)
		maps.Copy(meta, base)
		meta[MetaChunkIndex] = len(chunks)
		meta[MetaChunkSize] = end - start
		meta[MetaStartChar] = start
		meta[MetaEndChar] = end

		chunks = append(chunks, Chunk{Text: trimmed, Metadata: meta})
	}

	return chunks
}

// ChunkDocument seeds the document-level metadata and delegates to Chunk.
// filePath defaults to documentName.
func (c *Chunker) ChunkDocument(text, documentName, filePath string) []Chunk {
	if filePath == "" {
		filePath = documentName
	}
	return c.Chunk(text, map[string]any{
		MetaDocumentName:   documentName,
		MetaFilePath:       filePath,
		MetaDocumentLength: utf8.RuneCountInString(text),
	})
}
