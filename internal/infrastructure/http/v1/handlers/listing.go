package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopper/internal/core/apperror"
	"shopper/internal/domain/filter"
	"shopper/internal/domain/listing"
	"shopper/internal/infrastructure/http/v1/dto"
)

// ListingHandler serves the schema-driven listing endpoints. One
// handler covers every registered entity; the entity name comes from
// the URL.
type ListingHandler struct {
	service *listing.Service
}

// NewListingHandler creates a listing handler.
func NewListingHandler(service *listing.Service) *ListingHandler {
	return &ListingHandler{service: service}
}

// List handles GET /api/v1/:entity
func (h *ListingHandler) List(c *gin.Context) {
	entity := c.Param("entity")
	params := DecodeParams(c.Request.URL.Query())

	page, err := h.service.List(c.Request.Context(), entity, params)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(page, c.Request.URL))
}

// Bulk handles POST /api/v1/:entity/bulk
func (h *ListingHandler) Bulk(c *gin.Context) {
	entity := c.Param("entity")

	var req dto.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.NewValidation("invalid request body").WithCause(err))
		return
	}
	if err := req.Validate(); err != nil {
		_ = c.Error(apperror.NewValidation(err.Error()))
		return
	}

	affected, err := h.service.BulkApply(c.Request.Context(), entity, filter.Action(req.Action), req.IDs)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.BulkResponse{
		Entity:   entity,
		Action:   req.Action,
		Affected: affected,
	})
}

// Entities handles GET /api/v1/entities and lists what can be queried.
func (h *ListingHandler) Entities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"entities": h.service.Registry().Entities(),
	})
}
