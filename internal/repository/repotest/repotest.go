// Package repotest holds behaviour checks shared by every record store
// implementation.
package repotest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pdf-rag-be/internal/entity"
	"pdf-rag-be/internal/repository/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func RunDocumentRepository(t *testing.T, newRepo func(t *testing.T) contract.DocumentRepository) {
	ctx := context.Background()

	t.Run("save stamps and overwrites by name", func(t *testing.T) {
		repo := newRepo(t)

		first := &entity.DocumentMetadata{Name: "a.pdf", NumChunks: 3, SizeMB: 1.5}
		require.NoError(t, repo.Save(ctx, first))
		assert.False(t, first.AddedAt.IsZero())

		require.NoError(t, repo.Save(ctx, &entity.DocumentMetadata{Name: "a.pdf", NumChunks: 7}))

		got, err := repo.FindByName(ctx, "a.pdf")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 7, got.NumChunks)
		assert.False(t, got.AddedAt.IsZero())

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("find all is sorted by name", func(t *testing.T) {
		repo := newRepo(t)
		for _, name := range []string{"c.pdf", "a.pdf", "b.pdf"} {
			require.NoError(t, repo.Save(ctx, &entity.DocumentMetadata{Name: name}))
		}

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf"}, []string{all[0].Name, all[1].Name, all[2].Name})
	})

	t.Run("missing names", func(t *testing.T) {
		repo := newRepo(t)

		got, err := repo.FindByName(ctx, "nope.pdf")
		require.NoError(t, err)
		assert.Nil(t, got)

		removed, err := repo.Delete(ctx, "nope.pdf")
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("delete", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, &entity.DocumentMetadata{Name: "a.pdf"}))

		removed, err := repo.Delete(ctx, "a.pdf")
		require.NoError(t, err)
		assert.True(t, removed)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func RunChatHistoryRepository(t *testing.T, newRepo func(t *testing.T, maxRecords int) contract.ChatHistoryRepository) {
	ctx := context.Background()

	interaction := func(i int) *entity.Interaction {
		return &entity.Interaction{
			Type:      entity.InteractionType,
			Query:     fmt.Sprintf("q%d", i),
			Answer:    fmt.Sprintf("a%d", i),
			Sources:   []string{"doc.pdf"},
			NumChunks: i,
		}
	}

	t.Run("append and read back in order", func(t *testing.T) {
		repo := newRepo(t, 100)
		for i := 0; i < 3; i++ {
			require.NoError(t, repo.SaveInteraction(ctx, interaction(i)))
		}

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "q0", all[0].Query)
		assert.Equal(t, "q2", all[2].Query)
		assert.Equal(t, []string{"doc.pdf"}, all[1].Sources)
		assert.False(t, all[0].Timestamp.IsZero())
	})

	t.Run("keeps an explicit timestamp", func(t *testing.T) {
		repo := newRepo(t, 100)
		ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		item := interaction(0)
		item.Timestamp = ts
		require.NoError(t, repo.SaveInteraction(ctx, item))

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.True(t, ts.Equal(all[0].Timestamp))
	})

	t.Run("cap evicts oldest", func(t *testing.T) {
		repo := newRepo(t, 3)
		for i := 0; i < 5; i++ {
			require.NoError(t, repo.SaveInteraction(ctx, interaction(i)))
		}

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "q2", all[0].Query)
		assert.Equal(t, "q4", all[2].Query)
	})

	t.Run("recent", func(t *testing.T) {
		repo := newRepo(t, 100)
		for i := 0; i < 12; i++ {
			require.NoError(t, repo.SaveInteraction(ctx, interaction(i)))
		}

		recent, err := repo.FindRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, "q10", recent[0].Query)
		assert.Equal(t, "q11", recent[1].Query)

		recent, err = repo.FindRecent(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, recent, contract.DefaultRecentHistoryLimit)
	})

	t.Run("clear", func(t *testing.T) {
		repo := newRepo(t, 100)
		require.NoError(t, repo.SaveInteraction(ctx, interaction(0)))
		require.NoError(t, repo.Clear(ctx))

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		require.NoError(t, repo.Clear(ctx))
	})
}
