package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/stwalsh4118/landman/api/internal/errors"
	"github.com/stwalsh4118/landman/api/internal/pdftext"
	"github.com/stwalsh4118/landman/api/internal/revenue"
	"github.com/stwalsh4118/landman/api/internal/services"
	"github.com/stwalsh4118/landman/api/internal/title"
)

// uploadField is the multipart form field every upload endpoint reads.
const uploadField = "file"

var errMissingFile = errors.New("multipart field \"file\" is required")

// ResolveQuery is the shared ?resolve= switch on parse endpoints.
type ResolveQuery struct {
	Resolve bool `form:"resolve"`
}

// readUpload returns the uploaded file's name and contents. On failure it
// has already written the error response.
func readUpload(c *gin.Context, limit int64) (string, []byte, bool) {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		if isTooLarge(err) {
			apierrors.PayloadTooLarge(c, limit)
			return "", nil, false
		}
		apierrors.BadRequest(c, errMissingFile.Error(), nil)
		return "", nil, false
	}

	f, err := fh.Open()
	if err != nil {
		apierrors.BadRequest(c, "Uploaded file could not be opened", nil)
		return "", nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		if isTooLarge(err) {
			apierrors.PayloadTooLarge(c, limit)
			return "", nil, false
		}
		apierrors.BadRequest(c, "Uploaded file could not be read", nil)
		return "", nil, false
	}
	return fh.Filename, data, true
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// respondParseError maps document-level parse failures onto HTTP. Problems
// with the document itself are 4xx; everything else is a server error.
func respondParseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyInput):
		apierrors.BadRequest(c, err.Error(), nil)
	case errors.Is(err, title.ErrUnsupportedFile):
		apierrors.BadRequest(c, err.Error(), map[string]interface{}{
			"accepted": []string{".csv", ".xlsx"},
		})
	case errors.Is(err, pdftext.ErrEmptyPDF),
		errors.Is(err, pdftext.ErrMalformedPDF),
		errors.Is(err, title.ErrEmptyWorkbook),
		errors.Is(err, revenue.ErrLayoutNotDetected),
		errors.Is(err, revenue.ErrUnsupportedStatement):
		apierrors.UnprocessableEntity(c, err.Error(), nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		apierrors.ServiceUnavailable(c, "Request was cancelled before parsing finished", err)
	default:
		apierrors.InternalServerError(c, "Failed to parse document", err)
	}
}

// respondRegistryError maps registry failures onto HTTP.
func respondRegistryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEntityNotFound):
		apierrors.NotFound(c, "Entity not found")
	case errors.Is(err, services.ErrRegistryBusy):
		apierrors.Conflict(c, "Registry changed concurrently; retry the request")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		apierrors.ServiceUnavailable(c, "Request was cancelled before the registry committed", err)
	default:
		apierrors.InternalServerError(c, "Failed to update entity registry", err)
	}
}
