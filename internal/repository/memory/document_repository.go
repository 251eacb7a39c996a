package memory

import (
	"context"
	"sort"
	"time"

	"pdf-rag-be/internal/entity"
	"pdf-rag-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type DocumentRepository struct {
	cache *cache.Cache
}

var _ contract.DocumentRepository = (*DocumentRepository)(nil)

func NewDocumentRepository() *DocumentRepository {
	// Metadata lives as long as the process; no expiry, no janitor.
	c := cache.New(cache.NoExpiration, 0)
	return &DocumentRepository{
		cache: c,
	}
}

func (r *DocumentRepository) Save(ctx context.Context, doc *entity.DocumentMetadata) error {
	doc.AddedAt = time.Now()
	stored := *doc
	r.cache.Set(doc.Name, &stored, cache.NoExpiration)
	return nil
}

func (r *DocumentRepository) FindAll(ctx context.Context) ([]*entity.DocumentMetadata, error) {
	items := r.cache.Items()
	out := make([]*entity.DocumentMetadata, 0, len(items))
	for _, item := range items {
		doc := *item.Object.(*entity.DocumentMetadata)
		out = append(out, &doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *DocumentRepository) FindByName(ctx context.Context, name string) (*entity.DocumentMetadata, error) {
	if x, found := r.cache.Get(name); found {
		doc := *x.(*entity.DocumentMetadata)
		return &doc, nil
	}
	return nil, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, name string) (bool, error) {
	if _, found := r.cache.Get(name); !found {
		return false, nil
	}
	r.cache.Delete(name)
	return true, nil
}
