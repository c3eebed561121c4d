package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/shared"
	"github.com/hexasamples/backend/internal/infrastructure/logger"
	"github.com/hexasamples/backend/internal/interfaces/http/dto"
	"github.com/hexasamples/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(logger.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Paginated sends one page of a listing with its meta block
func Paginated[T any](c *gin.Context, page shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Conflict sends a 409 conflict response
func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.Error(c, http.StatusConflict, dto.ErrCodeConcurrencyConflict, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// Result renders an application result. successStatus applies when the
// result succeeded; failures take their status from the result code.
func (h *BaseHandler) Result(c *gin.Context, result shared.Result, data any, successStatus int) {
	status := dto.StatusForResult(result, successStatus)
	if status >= http.StatusInternalServerError {
		first, _ := result.FirstError()
		logger.L(c.Request.Context()).Error("Request failed with application error",
			zap.String("message", first.Text),
			zap.Error(first.Err),
		)
	}
	c.JSON(status, dto.NewResultResponse(result, data, getRequestID(c)))
}

// BindError answers a request whose body or query could not be bound.
// Validator failures list each rejected field.
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	if middleware.IsBodyTooLarge(err) {
		var tooLarge *http.MaxBytesError
		errors.As(err, &tooLarge)
		c.JSON(http.StatusRequestEntityTooLarge, middleware.BodyTooLargeResponse(tooLarge.Limit))
		return
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, middleware.FormatValidationErrors(verrs, getRequestID(c)))
		return
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, err.Error())
}

// HandleError converts an error returned by a service into a response.
// Domain errors keep their meaning; concurrency conflicts become 409 and
// anything else is logged and reported as a 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if shared.IsConcurrencyError(err) {
		h.Conflict(c, "The resource was modified by another request, reload and retry")
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	logger.L(c.Request.Context()).Error("Unexpected error handling request", zap.Error(err))
	_ = c.Error(err)
	h.InternalError(c, "An unexpected error occurred")
}

// parseUUIDParam reads a path parameter as a UUID, answering 400 when it
// is malformed. ok is false once a response has been written.
func (h *BaseHandler) parseUUIDParam(c *gin.Context, name string) (id uuid.UUID, ok bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.Result(c, shared.InvalidParameters("Invalid "+name, name), nil, http.StatusOK)
		return uuid.Nil, false
	}
	return id, true
}
