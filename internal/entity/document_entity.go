package entity

import "time"

// DocumentMetadata describes one ingested PDF. Keyed by Name; saving the
// same name again replaces the previous entry.
type DocumentMetadata struct {
	Name         string    `json:"name"`
	FilePath     string    `json:"file_path"`
	SizeMB       float64   `json:"size_mb"`
	NumPages     int       `json:"num_pages"`
	NumChunks    int       `json:"num_chunks"`
	ChunkSize    int       `json:"chunk_size"`
	ChunkOverlap int       `json:"chunk_overlap"`
	AddedAt      time.Time `json:"added_at"`
}
