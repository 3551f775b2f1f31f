package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/stwalsh4118/landman/api/internal/errors"
	"github.com/stwalsh4118/landman/api/internal/middleware"
	"github.com/stwalsh4118/landman/api/internal/services"
)

// ParseHandler handles the document parsing endpoints.
type ParseHandler struct {
	parser    services.ParseService
	registry  services.RegistryService
	maxUpload int64
}

// NewParseHandler creates a new ParseHandler instance. maxUpload is the
// body limit reported back when an upload is rejected.
func NewParseHandler(parser services.ParseService, registry services.RegistryService, maxUpload int64) *ParseHandler {
	return &ParseHandler{
		parser:    parser,
		registry:  registry,
		maxUpload: maxUpload,
	}
}

// ExhibitTextRequest is the JSON body accepted by the Exhibit-A endpoint.
type ExhibitTextRequest struct {
	Text     string `json:"text" binding:"required"`
	Document string `json:"document"`
}

// ExhibitResponse is the Exhibit-A parse result, plus the registry outcome
// when resolution was requested.
type ExhibitResponse struct {
	*services.ExtractResult
	Registry *services.IngestSummary `json:"registry,omitempty"`
}

// TitleResponse is the title parse result, plus the registry outcome when
// resolution was requested.
type TitleResponse struct {
	*services.TitleResult
	Registry *services.IngestSummary `json:"registry,omitempty"`
}

// ExhibitA handles POST /api/v1/exhibit-a/parse. It accepts either a JSON
// body with the list text or a multipart upload of a PDF or text file.
func (h *ParseHandler) ExhibitA(c *gin.Context) {
	var query ResolveQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	var document string
	var data []byte
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var req ExhibitTextRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			if isTooLarge(err) {
				apierrors.PayloadTooLarge(c, h.maxUpload)
				return
			}
			if validationErrors, ok := err.(validator.ValidationErrors); ok {
				apierrors.ValidationError(c, validationErrors)
				return
			}
			apierrors.BadRequest(c, "Invalid request body", nil)
			return
		}
		document, data = req.Document, []byte(req.Text)
	} else {
		var ok bool
		if document, data, ok = readUpload(c, h.maxUpload); !ok {
			return
		}
	}

	ctx := c.Request.Context()
	result, err := h.parser.ParseExhibitA(ctx, document, data)
	if err != nil {
		respondParseError(c, err)
		return
	}

	response := ExhibitResponse{ExtractResult: result}
	if query.Resolve {
		src := services.NewSource(services.ToolExtract, result.JobID, document)
		summary, err := h.registry.IngestParties(ctx, result.Entries, src)
		if err != nil {
			respondRegistryError(c, err)
			return
		}
		response.Registry = summary
	}

	logParse(c, services.ToolExtract, result.JobID, result.Total, query.Resolve)
	c.JSON(http.StatusOK, response)
}

// Title handles POST /api/v1/title/parse.
func (h *ParseHandler) Title(c *gin.Context) {
	var query ResolveQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}
	document, data, ok := readUpload(c, h.maxUpload)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	result, err := h.parser.ParseTitle(ctx, document, data)
	if err != nil {
		respondParseError(c, err)
		return
	}

	response := TitleResponse{TitleResult: result}
	if query.Resolve {
		src := services.NewSource(services.ToolTitle, result.JobID, document)
		summary, err := h.registry.IngestOwners(ctx, result.Owners, src)
		if err != nil {
			respondRegistryError(c, err)
			return
		}
		response.Registry = summary
	}

	logParse(c, services.ToolTitle, result.JobID, result.Total, query.Resolve)
	c.JSON(http.StatusOK, response)
}

// Revenue handles POST /api/v1/revenue/parse.
func (h *ParseHandler) Revenue(c *gin.Context) {
	document, data, ok := readUpload(c, h.maxUpload)
	if !ok {
		return
	}

	result, err := h.parser.ParseRevenue(c.Request.Context(), document, data)
	if err != nil {
		respondParseError(c, err)
		return
	}

	logParse(c, services.ToolRevenue, result.JobID, len(result.Statement.Rows), false)
	c.JSON(http.StatusOK, result)
}

func logParse(c *gin.Context, tool, jobID string, records int, resolved bool) {
	if log := middleware.GetLogger(c); log != nil {
		log.Info("Document parsed", map[string]interface{}{
			"tool":     tool,
			"job_id":   jobID,
			"records":  records,
			"resolved": resolved,
		})
	}
}
