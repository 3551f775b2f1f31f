package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stwalsh4118/landman/api/internal/address"
	apierrors "github.com/stwalsh4118/landman/api/internal/errors"
	"github.com/stwalsh4118/landman/api/internal/extract"
	"github.com/stwalsh4118/landman/api/internal/middleware"
	"github.com/stwalsh4118/landman/api/internal/models"
	"github.com/stwalsh4118/landman/api/internal/resolution"
	"github.com/stwalsh4118/landman/api/internal/services"
)

// EntityHandler handles the entity registry endpoints.
type EntityHandler struct {
	registry services.RegistryService
}

// NewEntityHandler creates a new EntityHandler instance.
func NewEntityHandler(registry services.RegistryService) *EntityHandler {
	return &EntityHandler{registry: registry}
}

// ResolveRequest is the body of POST /api/v1/entities/resolve. Address is
// free text and is run through the address parser.
type ResolveRequest struct {
	Name         string            `json:"name" binding:"required,max=500"`
	Address      string            `json:"address" binding:"max=500"`
	EntityType   models.EntityType `json:"entity_type"`
	PropertyRefs []string          `json:"property_refs" binding:"max=100"`
	Interest     *float64          `json:"interest" binding:"omitempty,gte=0,lte=1"`
	Document     string            `json:"document"`
}

// SearchRequest holds the query parameters of GET /api/v1/entities.
type SearchRequest struct {
	Name  string `form:"name" binding:"required"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=200"`
}

// SearchResponse lists name search hits.
type SearchResponse struct {
	Entities []services.SearchHit `json:"entities"`
	Count    int                  `json:"count"`
}

// Resolve handles POST /api/v1/entities/resolve.
func (h *EntityHandler) Resolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	entityType := req.EntityType
	if entityType == "" {
		entityType = extract.Classify(req.Name)
	}
	x := resolution.Extraction{
		Name:         req.Name,
		Address:      address.Parse(req.Address),
		EntityType:   entityType,
		PropertyRefs: req.PropertyRefs,
		Interest:     req.Interest,
		Source:       services.NewSource(services.ToolAPI, "", req.Document),
	}

	result, err := h.registry.Resolve(c.Request.Context(), x)
	if err != nil {
		if errors.Is(err, resolution.ErrEmptyName) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		respondRegistryError(c, err)
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Entity resolved", map[string]interface{}{
			"entity_id": result.Entity.ID.String(),
			"created":   result.Created,
			"score":     result.Score,
		})
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

// Get handles GET /api/v1/entities/:id.
func (h *EntityHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Entity id must be a UUID", map[string]interface{}{
			"id": c.Param("id"),
		})
		return
	}

	detail, err := h.registry.GetEntity(c.Request.Context(), id)
	if err != nil {
		respondRegistryError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Search handles GET /api/v1/entities?name=.
func (h *EntityHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	hits, err := h.registry.Search(c.Request.Context(), req.Name, req.Limit)
	if err != nil {
		if errors.Is(err, services.ErrEmptyQuery) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		respondRegistryError(c, err)
		return
	}
	c.JSON(http.StatusOK, SearchResponse{Entities: hits, Count: len(hits)})
}
