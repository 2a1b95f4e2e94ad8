package dto

import (
	"github.com/finledger/finledger/internal/core/domain"
)

// CreateEntityRequest is the request body for creating an entity.
type CreateEntityRequest struct {
	Name             string `json:"name" binding:"required"`
	BaseCurrencyCode string `json:"baseCurrencyCode" binding:"required,len=3"`
}

// EntityResponse defines the data returned for an entity.
type EntityResponse struct {
	EntityID         string `json:"entityID"`
	Name             string `json:"name"`
	BaseCurrencyCode string `json:"baseCurrencyCode"`
	IsArchived       bool   `json:"isArchived"`
}

// ToEntityResponse converts a domain.Entity to EntityResponse.
func ToEntityResponse(e *domain.Entity) EntityResponse {
	return EntityResponse{
		EntityID:         e.EntityID,
		Name:             e.Name,
		BaseCurrencyCode: e.BaseCurrencyCode,
		IsArchived:       e.IsArchived,
	}
}

// ToEntityResponses converts a slice of domain entities.
func ToEntityResponses(entities []domain.Entity) []EntityResponse {
	responses := make([]EntityResponse, len(entities))
	for i := range entities {
		responses[i] = ToEntityResponse(&entities[i])
	}
	return responses
}
