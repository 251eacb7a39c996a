package contract

import (
	"context"

	"pdf-rag-be/internal/entity"
)

// DocumentRepository stores one metadata entry per document name.
type DocumentRepository interface {
	// Save stamps AddedAt and replaces any entry with the same name.
	Save(ctx context.Context, doc *entity.DocumentMetadata) error
	FindAll(ctx context.Context) ([]*entity.DocumentMetadata, error)
	// FindByName returns nil, nil when the name is unknown.
	FindByName(ctx context.Context, name string) (*entity.DocumentMetadata, error)
	// Delete reports false when there was nothing to remove.
	Delete(ctx context.Context, name string) (bool, error)
}
