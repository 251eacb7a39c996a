package dto

import "time"

// Log ids are MD5 hashes of the raw log line, not UUIDs.

type LogListResponse struct {
	Id        string    `json:"id"`
	Level     string    `json:"level"`
	Module    string    `json:"module"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type LogDetailResponse struct {
	LogListResponse
	Details map[string]interface{} `json:"details"`
}

type StoragePaths struct {
	UploadDir      string `json:"upload_dir"`
	VectorDBPath   string `json:"vector_db_path"`
	ChatHistoryDir string `json:"chat_history_dir"`
}

type ProcessingSettings struct {
	ChunkSize         int    `json:"chunk_size"`
	ChunkOverlap      int    `json:"chunk_overlap"`
	MaxFileSizeMB     int    `json:"max_file_size_mb"`
	RetrievalK        int    `json:"retrieval_k"`
	StorageType       string `json:"storage_type"`
	RecordStore       string `json:"record_store"`
	EmbeddingProvider string `json:"embedding_provider"`
}

// SystemStatusResponse backs the status page: backends, index and settings.
type SystemStatusResponse struct {
	Backends   BackendStatusResponse `json:"backends"`
	Collection CollectionResponse    `json:"collection"`
	Documents  int                   `json:"documents"`
	Paths      StoragePaths          `json:"paths"`
	Settings   ProcessingSettings    `json:"settings"`
}

type CollectionResponse struct {
	TotalChunks     int      `json:"total_chunks"`
	StorageType     string   `json:"storage_type"`
	CollectionName  string   `json:"collection_name"`
	UniqueDocuments int      `json:"unique_documents"`
	DocumentNames   []string `json:"document_names"`
	Error           string   `json:"error,omitempty"`
}

type ValidateConfigResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}
