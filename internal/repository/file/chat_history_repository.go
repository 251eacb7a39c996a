package file

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"pdf-rag-be/internal/entity"
	"pdf-rag-be/internal/repository/contract"
)

const chatHistoryFileName = "chat_history.json"

type chatHistoryRepository struct {
	mu         sync.Mutex
	path       string
	maxRecords int
}

func NewChatHistoryRepository(dir string, maxRecords int) contract.ChatHistoryRepository {
	return &chatHistoryRepository{
		path:       filepath.Join(dir, chatHistoryFileName),
		maxRecords: maxRecords,
	}
}

func (r *chatHistoryRepository) load() ([]*entity.Interaction, error) {
	history := []*entity.Interaction{}
	if err := readJSON(r.path, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (r *chatHistoryRepository) SaveInteraction(ctx context.Context, interaction *entity.Interaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	history, err := r.load()
	if err != nil {
		return err
	}
	if interaction.Timestamp.IsZero() {
		interaction.Timestamp = time.Now()
	}
	history = append(history, interaction)
	if r.maxRecords > 0 && len(history) > r.maxRecords {
		history = history[len(history)-r.maxRecords:]
	}
	return writeJSON(r.path, history)
}

func (r *chatHistoryRepository) FindAll(ctx context.Context) ([]*entity.Interaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *chatHistoryRepository) FindRecent(ctx context.Context, limit int) ([]*entity.Interaction, error) {
	if limit <= 0 {
		limit = contract.DefaultRecentHistoryLimit
	}
	history, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history, nil
}

func (r *chatHistoryRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return writeJSON(r.path, []*entity.Interaction{})
}
