package entity

import "time"

const InteractionType = "interaction"

// Interaction is one answered question in the chat history.
type Interaction struct {
	Type      string    `json:"type"`
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Sources   []string  `json:"sources"`
	NumChunks int       `json:"num_chunks"`
	Timestamp time.Time `json:"timestamp"`
}
