package contract

import (
	"context"

	"pdf-rag-be/internal/entity"
)

const DefaultRecentHistoryLimit = 10

// ChatHistoryRepository is an append-only log of interactions, capped at a
// maximum length with the oldest entries evicted first.
type ChatHistoryRepository interface {
	// SaveInteraction stamps Timestamp when it is zero.
	SaveInteraction(ctx context.Context, interaction *entity.Interaction) error
	FindAll(ctx context.Context) ([]*entity.Interaction, error)
	// FindRecent returns the last limit entries, oldest first.
	FindRecent(ctx context.Context, limit int) ([]*entity.Interaction, error)
	Clear(ctx context.Context) error
}
