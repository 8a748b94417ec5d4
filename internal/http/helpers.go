package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nmhoang/libshelf/internal/errs"
	"github.com/nmhoang/libshelf/internal/transport"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"` // machine-readable error code
	Details any    `json:"details,omitempty"`
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondInternalError logs the error and sends a 502 Bad Gateway
// response: every failure here is the backend or catalog misbehaving,
// not this process. The actual error is logged but not exposed.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Upstream error (%s): %v", context, err)
	c.JSON(http.StatusBadGateway, ErrorResponse{Error: "upstream request failed"})
}

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondServiceError maps the service error taxonomy onto HTTP
// statuses. Unknown errors are treated as upstream failures.
func respondServiceError(c *gin.Context, err error, context string) {
	var (
		validation *errs.ValidationError
		unauth     *errs.UnauthorizedError
		authErr    *errs.AuthenticationError
		mismatch   *errs.RoleMismatchError
		duplicate  *errs.DuplicateEntryError
		partial    *errs.PartialStateError
		update     *errs.ShelfUpdateError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validation.Reason, Code: "validation"})
	case errors.As(err, &unauth), errors.Is(err, transport.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "unauthorized"})
	case errors.As(err, &authErr):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: authErr.Message, Code: "authentication_failed"})
	case errors.As(err, &mismatch):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error(), Code: "role_mismatch"})
	case errors.As(err, &duplicate):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "duplicate_entry"})
	case errors.As(err, &partial):
		// The shelf is in neither the old nor the new state; the
		// client must re-query before showing anything.
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "partial_state"})
	case errors.As(err, &update):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error(), Code: "shelf_update_failed"})
	default:
		respondInternalError(c, err, context)
	}
}

// --- Parameter Parsing ---

// parseQueryPage reads a non-negative page number from the query
// string, defaulting to 0.
func parseQueryPage(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		return 0
	}
	return page
}

// parseFolderID extracts a folder ID from URL parameters. Responds
// with a 400 and returns false when it is not a number.
func parseFolderID(c *gin.Context, paramName string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(paramName), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return id, true
}
