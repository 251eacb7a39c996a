package redis

import (
	"context"
	"encoding/json"
	"time"

	"pdf-rag-be/internal/entity"
	"pdf-rag-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const historyKey = "chat_history"

type chatHistoryRepository struct {
	rdb        *redis.Client
	key        string
	maxRecords int
}

func NewChatHistoryRepository(rdb *redis.Client, prefix string, maxRecords int) contract.ChatHistoryRepository {
	return &chatHistoryRepository{rdb: rdb, key: prefix + historyKey, maxRecords: maxRecords}
}

// SaveInteraction appends and trims in one transaction.
func (r *chatHistoryRepository) SaveInteraction(ctx context.Context, interaction *entity.Interaction) error {
	if interaction.Timestamp.IsZero() {
		interaction.Timestamp = time.Now()
	}
	raw, err := json.Marshal(interaction)
	if err != nil {
		return err
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, r.key, raw)
		if r.maxRecords > 0 {
			pipe.LTrim(ctx, r.key, int64(-r.maxRecords), -1)
		}
		return nil
	})
	return err
}

func (r *chatHistoryRepository) FindAll(ctx context.Context) ([]*entity.Interaction, error) {
	return r.lrange(ctx, 0)
}

func (r *chatHistoryRepository) FindRecent(ctx context.Context, limit int) ([]*entity.Interaction, error) {
	if limit <= 0 {
		limit = contract.DefaultRecentHistoryLimit
	}
	return r.lrange(ctx, int64(-limit))
}

func (r *chatHistoryRepository) lrange(ctx context.Context, start int64) ([]*entity.Interaction, error) {
	raws, err := r.rdb.LRange(ctx, r.key, start, -1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*entity.Interaction, 0, len(raws))
	for _, raw := range raws {
		var item entity.Interaction
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, err
		}
		out = append(out, &item)
	}
	return out, nil
}

func (r *chatHistoryRepository) Clear(ctx context.Context) error {
	return r.rdb.Del(ctx, r.key).Err()
}
