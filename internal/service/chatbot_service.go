package service

import (
	"context"
	"errors"
	"fmt"

	"pdf-rag-be/internal/dto"
	"pdf-rag-be/internal/mapper"
	"pdf-rag-be/internal/repository/contract"
	"pdf-rag-be/pkg/llm"
	"pdf-rag-be/pkg/rag"
	"pdf-rag-be/pkg/ragerror"
)

var ErrBackendNotAvailable = fmt.Errorf("%w: backend is not registered or not reachable", ragerror.ErrBackendUnavailable)

type IChatbotService interface {
	SendChat(ctx context.Context, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	GetChatHistory(ctx context.Context, limit int) ([]*dto.InteractionResponse, error)
	ClearChatHistory(ctx context.Context) error
	GetBackends(ctx context.Context) *dto.BackendStatusResponse
	SetDefaultBackend(ctx context.Context, name string) (*dto.BackendStatusResponse, error)
	GetModels(ctx context.Context, name string) (*dto.BackendModelsResponse, error)
}

// BackendCatalog is the read side of llm.Registry.
type BackendCatalog interface {
	Names() []string
	DefaultBackend() string
	AvailableBackends(ctx context.Context) []string
	SetDefaultBackend(ctx context.Context, name string) bool
	Backend(name string) (llm.Backend, bool)
}

var _ BackendCatalog = (*llm.Registry)(nil)

type chatbotService struct {
	orchestrator *rag.Orchestrator
	history      contract.ChatHistoryRepository
	backends     BackendCatalog
	defaultK     int
	mapper       *mapper.ChatMapper
}

func NewChatbotService(
	orchestrator *rag.Orchestrator,
	history contract.ChatHistoryRepository,
	backends BackendCatalog,
	defaultK int,
) IChatbotService {
	return &chatbotService{
		orchestrator: orchestrator,
		history:      history,
		backends:     backends,
		defaultK:     defaultK,
		mapper:       mapper.NewChatMapper(),
	}
}

// SendChat answers one question. Pipeline failures come back inside the
// response body, never as an error.
func (cs *chatbotService) SendChat(ctx context.Context, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	k := request.K
	if k <= 0 {
		k = cs.defaultK
	}
	resp := cs.orchestrator.GenerateResponse(ctx, request.Query, request.Backend, k)
	return cs.mapper.ResponseToDTO(resp), nil
}

// GetChatHistory returns the last limit interactions, oldest first; limit
// <= 0 returns everything.
func (cs *chatbotService) GetChatHistory(ctx context.Context, limit int) ([]*dto.InteractionResponse, error) {
	items, err := cs.history.FindRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return cs.mapper.InteractionsToResponse(items), nil
}

func (cs *chatbotService) ClearChatHistory(ctx context.Context) error {
	return cs.history.Clear(ctx)
}

func (cs *chatbotService) GetBackends(ctx context.Context) *dto.BackendStatusResponse {
	return &dto.BackendStatusResponse{
		Backends:  cs.backends.Names(),
		Available: cs.backends.AvailableBackends(ctx),
		Default:   cs.backends.DefaultBackend(),
	}
}

func (cs *chatbotService) SetDefaultBackend(ctx context.Context, name string) (*dto.BackendStatusResponse, error) {
	if !cs.orchestrator.SetDefaultBackend(ctx, name) {
		return nil, fmt.Errorf("%w: %s", ErrBackendNotAvailable, name)
	}
	return cs.GetBackends(ctx), nil
}

func (cs *chatbotService) GetModels(ctx context.Context, name string) (*dto.BackendModelsResponse, error) {
	backend, ok := cs.backends.Backend(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ragerror.ErrUnknownBackend, name)
	}
	lister, ok := backend.(llm.ModelLister)
	if !ok {
		return nil, fmt.Errorf("%w: %s", llm.ErrListingUnsupported, name)
	}
	models, err := lister.ListModels(ctx)
	if err != nil {
		if errors.Is(err, llm.ErrListingUnsupported) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ragerror.ErrBackendUnavailable, err)
	}
	if models == nil {
		models = []string{}
	}
	return &dto.BackendModelsResponse{Backend: name, Models: models}, nil
}
