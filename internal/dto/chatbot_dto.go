package dto

import "time"

type SendChatRequest struct {
	Query   string `json:"query" validate:"required"`
	Backend string `json:"backend" validate:"omitempty,oneof=gemini ollama openai"`
	K       int    `json:"k" validate:"omitempty,min=1,max=20"`
}

type ChunkDTO struct {
	Text       string   `json:"text"`
	Source     string   `json:"source"`
	ChunkIndex int      `json:"chunk_index"`
	Distance   *float64 `json:"distance"`
}

type SendChatResponse struct {
	Answer  string     `json:"answer"`
	Sources []string   `json:"sources"`
	Chunks  []ChunkDTO `json:"chunks"`
	Note    string     `json:"note,omitempty"`
	Error   string     `json:"error,omitempty"`
}

type InteractionResponse struct {
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Sources   []string  `json:"sources"`
	NumChunks int       `json:"num_chunks"`
	Timestamp time.Time `json:"timestamp"`
}

type BackendStatusResponse struct {
	Backends  []string `json:"backends"`
	Available []string `json:"available"`
	Default   string   `json:"default"`
}

type SetDefaultBackendRequest struct {
	Backend string `json:"backend" validate:"required,oneof=gemini ollama openai"`
}

type BackendModelsResponse struct {
	Backend string   `json:"backend"`
	Models  []string `json:"models"`
}
