package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/permalinkapp/permalink-server/internal/domain"
	"github.com/permalinkapp/permalink-server/internal/syncer"
)

func (s *Server) registerMappingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "generateMapping",
		Method:      http.MethodPost,
		Path:        "/api/v1/mappings/generate",
		Summary:     "Generate mapping",
		Description: "Generates a friendly URL mapping for a catalog item. Idempotent per item.",
		Tags:        []string{"Mappings"},
	}, s.handleGenerateMapping)

	huma.Register(s.api, huma.Operation{
		OperationID: "bulkGenerateMappings",
		Method:      http.MethodPost,
		Path:        "/api/v1/mappings/bulk",
		Summary:     "Bulk generate mappings",
		Description: "Scans the whole catalog and generates mappings for items that lack one",
		Tags:        []string{"Mappings"},
	}, s.handleBulkGenerate)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMappings",
		Method:      http.MethodGet,
		Path:        "/api/v1/mappings",
		Summary:     "List mappings",
		Description: "Returns all mappings, inactive ones included",
		Tags:        []string{"Mappings"},
	}, s.handleListMappings)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteMapping",
		Method:      http.MethodDelete,
		Path:        "/api/v1/mappings/{id}",
		Summary:     "Delete mapping",
		Description: "Deactivates a mapping, freeing its friendly URL and item for remapping",
		Tags:        []string{"Mappings"},
	}, s.handleDeleteMapping)
}

// === DTOs ===

// MappingResponse contains mapping data in API responses.
type MappingResponse struct {
	ID           string     `json:"id" doc:"Mapping ID"`
	ItemID       string     `json:"item_id" doc:"Catalog item ID"`
	ItemKind     string     `json:"item_kind" doc:"Catalog item kind"`
	FriendlyURL  string     `json:"friendly_url" doc:"Human-readable URL path"`
	OriginalURL  string     `json:"original_url" doc:"Redirect target"`
	CreatedAt    time.Time  `json:"created_at" doc:"Creation time"`
	UpdatedAt    time.Time  `json:"updated_at" doc:"Last update time"`
	IsActive     bool       `json:"is_active" doc:"Whether the mapping resolves"`
	AccessCount  int64      `json:"access_count" doc:"Number of resolutions"`
	LastAccessed *time.Time `json:"last_accessed,omitempty" doc:"Time of the last resolution"`
}

func toMappingResponse(m *domain.Mapping) MappingResponse {
	return MappingResponse{
		ID:           m.ID,
		ItemID:       m.ItemID,
		ItemKind:     string(m.ItemKind),
		FriendlyURL:  m.FriendlyURL,
		OriginalURL:  m.OriginalURL,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		IsActive:     m.IsActive,
		AccessCount:  m.AccessCount,
		LastAccessed: m.LastAccessed,
	}
}

// GenerateMappingRequest is the request body for generating a mapping.
type GenerateMappingRequest struct {
	ItemID string `json:"item_id" validate:"required,max=256" doc:"Catalog item ID"`
}

// GenerateMappingInput wraps the generate request for Huma.
type GenerateMappingInput struct {
	Body GenerateMappingRequest
}

// GenerateMappingResponse contains the generated mapping.
type GenerateMappingResponse struct {
	Mapping MappingResponse `json:"mapping" doc:"The mapping for the item"`
	Created bool            `json:"created" doc:"False when the item was already mapped"`
}

// GenerateMappingOutput wraps the generate response for Huma.
type GenerateMappingOutput struct {
	Body GenerateMappingResponse
}

// BulkGenerateOutput wraps the scan result for Huma.
type BulkGenerateOutput struct {
	Body syncer.ScanResult
}

// ListMappingsOutput wraps the mapping list for Huma.
type ListMappingsOutput struct {
	Body ListMappingsResponse
}

// ListMappingsResponse contains all mappings.
type ListMappingsResponse struct {
	Mappings []MappingResponse `json:"mappings" doc:"All mappings, ordered by creation time"`
	Total    int               `json:"total" doc:"Number of mappings"`
}

// DeleteMappingInput contains parameters for deleting a mapping.
type DeleteMappingInput struct {
	ID string `path:"id" doc:"Mapping ID"`
}

// MessageResponse contains a simple success message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleGenerateMapping(ctx context.Context, input *GenerateMappingInput) (*GenerateMappingOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	mapping, created, err := s.mappings.GenerateByItemID(ctx, input.Body.ItemID)
	if err != nil {
		return nil, err
	}

	return &GenerateMappingOutput{
		Body: GenerateMappingResponse{
			Mapping: toMappingResponse(mapping),
			Created: created,
		},
	}, nil
}

func (s *Server) handleBulkGenerate(ctx context.Context, _ *struct{}) (*BulkGenerateOutput, error) {
	result, err := s.sync.Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &BulkGenerateOutput{Body: result}, nil
}

func (s *Server) handleListMappings(ctx context.Context, _ *struct{}) (*ListMappingsOutput, error) {
	mappings, err := s.mappings.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]MappingResponse, len(mappings))
	for i, m := range mappings {
		resp[i] = toMappingResponse(m)
	}

	return &ListMappingsOutput{
		Body: ListMappingsResponse{
			Mappings: resp,
			Total:    len(resp),
		},
	}, nil
}

func (s *Server) handleDeleteMapping(ctx context.Context, input *DeleteMappingInput) (*MessageOutput, error) {
	if err := s.mappings.Delete(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Mapping deactivated"}}, nil
}
