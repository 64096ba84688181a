package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-api/internal/domain"
)

const internalErrorMessage = "internal server error"

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, message string, details gin.H) {
	body := gin.H{"success": false, "error": message}
	if details != nil {
		body["details"] = details
	}
	c.JSON(status, body)
}

// writeError maps service errors onto status codes. Unclassified errors
// are logged and answered with a generic message.
func (h *handlers) writeError(c *gin.Context, err error) {
	var (
		verr     *domain.ValidationError
		conflict *domain.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		var details gin.H
		if len(verr.Fields) > 0 {
			details = gin.H{"fields": verr.Fields}
		}
		fail(c, http.StatusBadRequest, verr.Message, details)
	case errors.As(err, &conflict):
		fail(c, http.StatusBadRequest, conflict.Message, nil)
	case errors.Is(err, domain.ErrAlreadyExists):
		fail(c, http.StatusBadRequest, "resource already exists", nil)
	case errors.Is(err, domain.ErrNotFound):
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			fail(c, http.StatusNotFound, nf.Error(), nil)
			return
		}
		fail(c, http.StatusNotFound, "not found", nil)
	default:
		id := requestIDFrom(c)
		h.logger.Error("http: request failed",
			zap.String("requestId", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		fail(c, http.StatusInternalServerError, internalErrorMessage, gin.H{"requestId": id})
	}
}

// bindJSON decodes the body, answering 400 on malformed input.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, http.StatusBadRequest, "invalid JSON body", gin.H{"reason": err.Error()})
		return false
	}
	return true
}

// idParam returns the :id path value, answering 404 when it is not a uuid.
func (h *handlers) idParam(c *gin.Context, entity string) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		h.writeError(c, domain.NotFound(entity))
		return "", false
	}
	return id, true
}

// intQuery parses a positive integer query value, falling back to def.
func intQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func boolQuery(c *gin.Context, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}
