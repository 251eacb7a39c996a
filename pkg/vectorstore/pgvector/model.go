package pgvector

import (
	"time"

	"pdf-rag-be/pkg/vectorstore"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// Chunk is one row of the collection table. The vector column is left
// untyped so any embedding provider's dimension fits.
type Chunk struct {
	Seq       int64           `gorm:"primaryKey;autoIncrement"`
	Id        string          `gorm:"type:uuid;uniqueIndex;not null"`
	Document  string          `gorm:"type:text"`
	Metadata  datatypes.JSON  `gorm:"type:jsonb"`
	Embedding pgvector.Vector `gorm:"type:vector"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
}

func (Chunk) TableName() string {
	return vectorstore.CollectionName
}

type scoredChunk struct {
	Chunk
	Distance float64
}
