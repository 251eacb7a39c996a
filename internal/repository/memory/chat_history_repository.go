package memory

import (
	"context"
	"sync"
	"time"

	"pdf-rag-be/internal/entity"
	"pdf-rag-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

const historyKey = "chat_history"

type ChatHistoryRepository struct {
	mu         sync.Mutex
	cache      *cache.Cache
	maxRecords int
}

var _ contract.ChatHistoryRepository = (*ChatHistoryRepository)(nil)

func NewChatHistoryRepository(maxRecords int) *ChatHistoryRepository {
	return &ChatHistoryRepository{
		cache:      cache.New(cache.NoExpiration, 0),
		maxRecords: maxRecords,
	}
}

func (r *ChatHistoryRepository) history() []entity.Interaction {
	if x, found := r.cache.Get(historyKey); found {
		return x.([]entity.Interaction)
	}
	return nil
}

func (r *ChatHistoryRepository) SaveInteraction(ctx context.Context, interaction *entity.Interaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if interaction.Timestamp.IsZero() {
		interaction.Timestamp = time.Now()
	}

	current := r.history()
	next := make([]entity.Interaction, 0, len(current)+1)
	next = append(next, current...)
	next = append(next, *interaction)
	if r.maxRecords > 0 && len(next) > r.maxRecords {
		next = next[len(next)-r.maxRecords:]
	}
	r.cache.Set(historyKey, next, cache.NoExpiration)
	return nil
}

func (r *ChatHistoryRepository) FindAll(ctx context.Context) ([]*entity.Interaction, error) {
	return r.FindRecent(ctx, -1)
}

// FindRecent with a negative limit returns everything.
func (r *ChatHistoryRepository) FindRecent(ctx context.Context, limit int) ([]*entity.Interaction, error) {
	if limit == 0 {
		limit = contract.DefaultRecentHistoryLimit
	}

	r.mu.Lock()
	history := r.history()
	r.mu.Unlock()

	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]*entity.Interaction, len(history))
	for i := range history {
		item := history[i]
		out[i] = &item
	}
	return out, nil
}

func (r *ChatHistoryRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(historyKey)
	return nil
}
