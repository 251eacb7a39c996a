package dto

import "time"

type DocumentResponse struct {
	Name         string    `json:"name"`
	FilePath     string    `json:"file_path"`
	SizeMB       float64   `json:"size_mb"`
	NumPages     int       `json:"num_pages"`
	NumChunks    int       `json:"num_chunks"`
	ChunkSize    int       `json:"chunk_size"`
	ChunkOverlap int       `json:"chunk_overlap"`
	AddedAt      time.Time `json:"added_at"`
}

// UploadResult reports one file of a multi-file upload. Failed files carry
// Error and no Document.
type UploadResult struct {
	Filename string            `json:"filename"`
	Status   string            `json:"status"` // processed, skipped, failed
	Document *DocumentResponse `json:"document,omitempty"`
	Error    string            `json:"error,omitempty"`
}

type UploadResponse struct {
	Processed int             `json:"processed"`
	Total     int             `json:"total"`
	Results   []*UploadResult `json:"results"`
}

type DeleteDocumentResponse struct {
	Name            string `json:"name"`
	VectorsDeleted  bool   `json:"vectors_deleted"`
	MetadataDeleted bool   `json:"metadata_deleted"`
}

type SearchRequest struct {
	Query    string `json:"query" validate:"required"`
	K        int    `json:"k" validate:"omitempty,min=1,max=50"`
	Document string `json:"document"`
}

type SearchResult struct {
	Id         string         `json:"id"`
	Text       string         `json:"text"`
	Source     string         `json:"source"`
	ChunkIndex int            `json:"chunk_index"`
	Distance   *float64       `json:"distance"`
	Metadata   map[string]any `json:"metadata"`
}
