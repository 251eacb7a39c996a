package file

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"pdf-rag-be/internal/entity"
	"pdf-rag-be/internal/repository/contract"
)

const documentsFileName = "documents.json"

type documentRepository struct {
	mu   sync.Mutex
	path string
}

func NewDocumentRepository(dir string) contract.DocumentRepository {
	return &documentRepository{path: filepath.Join(dir, documentsFileName)}
}

func (r *documentRepository) load() (map[string]*entity.DocumentMetadata, error) {
	docs := map[string]*entity.DocumentMetadata{}
	if err := readJSON(r.path, &docs); err != nil {
		return nil, err
	}
	// a file holding "null" decodes to a nil map
	if docs == nil {
		docs = map[string]*entity.DocumentMetadata{}
	}
	return docs, nil
}

func (r *documentRepository) Save(ctx context.Context, doc *entity.DocumentMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.load()
	if err != nil {
		return err
	}
	doc.AddedAt = time.Now()
	docs[doc.Name] = doc
	return writeJSON(r.path, docs)
}

func (r *documentRepository) FindAll(ctx context.Context) ([]*entity.DocumentMetadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make([]*entity.DocumentMetadata, 0, len(docs))
	for _, d := range docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *documentRepository) FindByName(ctx context.Context, name string) (*entity.DocumentMetadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.load()
	if err != nil {
		return nil, err
	}
	return docs[name], nil
}

func (r *documentRepository) Delete(ctx context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.load()
	if err != nil {
		return false, err
	}
	if _, ok := docs[name]; !ok {
		return false, nil
	}
	delete(docs, name)
	return true, writeJSON(r.path, docs)
}
