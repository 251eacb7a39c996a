package embedding

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"
)

const DefaultHashDimension = 384

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// HashProvider embeds text locally by hashing lowercase word tokens into a
// fixed number of buckets (signed feature hashing). It needs no corpus
// preparation and no network, so it serves as the offline default.
type HashProvider struct {
	dimension int
}

func NewHashProvider(dimension int) EmbeddingProvider {
	if dimension <= 0 {
		dimension = DefaultHashDimension
	}
	return &HashProvider{dimension: dimension}
}

func (p *HashProvider) Name() string { return "hash" }

func (p *HashProvider) Generate(_ context.Context, text string, _ string) (*EmbeddingResponse, error) {
	values := make([]float32, p.dimension)
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		h := fnv.New64a()
		h.Write([]byte(tok))
		sum := h.Sum64()

		bucket := int(sum % uint64(p.dimension))
		if sum&(1<<63) != 0 {
			values[bucket]--
		} else {
			values[bucket]++
		}
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: Normalize(values)},
	}, nil
}
