package mapper

import (
	"pdf-rag-be/internal/dto"
	"pdf-rag-be/internal/entity"
	"pdf-rag-be/pkg/rag"
	"pdf-rag-be/pkg/vectorstore"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToResponse(d *entity.DocumentMetadata) *dto.DocumentResponse {
	if d == nil {
		return nil
	}
	return &dto.DocumentResponse{
		Name:         d.Name,
		FilePath:     d.FilePath,
		SizeMB:       d.SizeMB,
		NumPages:     d.NumPages,
		NumChunks:    d.NumChunks,
		ChunkSize:    d.ChunkSize,
		ChunkOverlap: d.ChunkOverlap,
		AddedAt:      d.AddedAt,
	}
}

func (m *DocumentMapper) ToResponses(docs []*entity.DocumentMetadata) []*dto.DocumentResponse {
	res := make([]*dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		res = append(res, m.ToResponse(d))
	}
	return res
}

func (m *DocumentMapper) CollectionToResponse(info vectorstore.CollectionInfo) dto.CollectionResponse {
	names := info.DocumentNames
	if names == nil {
		names = []string{}
	}
	return dto.CollectionResponse{
		TotalChunks:     info.TotalChunks,
		StorageType:     info.StorageType,
		CollectionName:  info.CollectionName,
		UniqueDocuments: info.UniqueDocuments,
		DocumentNames:   names,
		Error:           info.Error,
	}
}

func (m *DocumentMapper) SearchResultsToResponse(results []vectorstore.Result) []*dto.SearchResult {
	res := make([]*dto.SearchResult, 0, len(results))
	for _, r := range results {
		chunk := rag.ToRetrievedChunk(r)
		res = append(res, &dto.SearchResult{
			Id:         r.ID,
			Text:       r.Text,
			Source:     chunk.Source,
			ChunkIndex: chunk.ChunkIndex,
			Distance:   r.Distance,
			Metadata:   r.Metadata,
		})
	}
	return res
}
