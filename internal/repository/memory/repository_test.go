package memory

import (
	"context"
	"testing"

	"pdf-rag-be/internal/entity"
	"pdf-rag-be/internal/repository/contract"
	"pdf-rag-be/internal/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRepository(t *testing.T) {
	repotest.RunDocumentRepository(t, func(t *testing.T) contract.DocumentRepository {
		return NewDocumentRepository()
	})
}

func TestChatHistoryRepository(t *testing.T) {
	repotest.RunChatHistoryRepository(t, func(t *testing.T, maxRecords int) contract.ChatHistoryRepository {
		return NewChatHistoryRepository(maxRecords)
	})
}

func TestDocumentRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository()
	require.NoError(t, repo.Save(ctx, &entity.DocumentMetadata{Name: "a.pdf", NumChunks: 1}))

	got, err := repo.FindByName(ctx, "a.pdf")
	require.NoError(t, err)
	got.NumChunks = 99

	again, err := repo.FindByName(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, 1, again.NumChunks)
}
