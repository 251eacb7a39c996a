package mapper

import (
	"pdf-rag-be/internal/dto"
	"pdf-rag-be/internal/entity"
	"pdf-rag-be/pkg/rag"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ResponseToDTO(r rag.Response) *dto.SendChatResponse {
	chunks := make([]dto.ChunkDTO, 0, len(r.Chunks))
	for _, c := range r.Chunks {
		chunks = append(chunks, dto.ChunkDTO{
			Text:       c.Text,
			Source:     c.Source,
			ChunkIndex: c.ChunkIndex,
			Distance:   c.Distance,
		})
	}
	sources := r.Sources
	if sources == nil {
		sources = []string{}
	}
	return &dto.SendChatResponse{
		Answer:  r.Answer,
		Sources: sources,
		Chunks:  chunks,
		Note:    r.Note,
		Error:   r.Error,
	}
}

func (m *ChatMapper) InteractionsToResponse(items []*entity.Interaction) []*dto.InteractionResponse {
	res := make([]*dto.InteractionResponse, 0, len(items))
	for _, i := range items {
		sources := i.Sources
		if sources == nil {
			sources = []string{}
		}
		res = append(res, &dto.InteractionResponse{
			Query:     i.Query,
			Answer:    i.Answer,
			Sources:   sources,
			NumChunks: i.NumChunks,
			Timestamp: i.Timestamp,
		})
	}
	return res
}
