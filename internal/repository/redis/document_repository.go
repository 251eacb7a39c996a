// Package redis keeps document metadata in a hash and chat history in a
// capped list, so several API replicas can share them.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"pdf-rag-be/internal/entity"
	"pdf-rag-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultKeyPrefix = "pdf_rag:"

	documentsKey = "documents"
)

type documentRepository struct {
	rdb *redis.Client
	key string
}

func NewDocumentRepository(rdb *redis.Client, prefix string) contract.DocumentRepository {
	return &documentRepository{rdb: rdb, key: prefix + documentsKey}
}

func (r *documentRepository) Save(ctx context.Context, doc *entity.DocumentMetadata) error {
	doc.AddedAt = time.Now()
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return r.rdb.HSet(ctx, r.key, doc.Name, raw).Err()
}

func (r *documentRepository) FindAll(ctx context.Context) ([]*entity.DocumentMetadata, error) {
	all, err := r.rdb.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*entity.DocumentMetadata, 0, len(all))
	for name, raw := range all {
		var doc entity.DocumentMetadata
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("decoding document %s: %w", name, err)
		}
		out = append(out, &doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *documentRepository) FindByName(ctx context.Context, name string) (*entity.DocumentMetadata, error) {
	raw, err := r.rdb.HGet(ctx, r.key, name).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc entity.DocumentMetadata
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) Delete(ctx context.Context, name string) (bool, error) {
	n, err := r.rdb.HDel(ctx, r.key, name).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
