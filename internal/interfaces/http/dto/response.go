package dto

import (
	"github.com/hexasamples/backend/internal/domain/shared"
)

// Response represents a standard API response
type Response struct {
	Success  bool             `json:"success"`
	Data     any              `json:"data,omitempty"`
	Messages []shared.Message `json:"messages,omitempty"`
	Error    *ErrorInfo       `json:"error,omitempty"`
	Meta     *Meta            `json:"meta,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes one rejected request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta represents pagination metadata
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewSuccessResponseWithMeta creates a success response with pagination meta
func NewSuccessResponseWithMeta(data any, total int64, page, pageSize int) Response {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
	}
}

// NewPaginatedResponse creates a success response from a paginated page
func NewPaginatedResponse[T any](page shared.Paginated[T]) Response {
	return NewSuccessResponseWithMeta(page.Items, page.Total, page.Page, page.PageSize)
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return NewErrorResponseWithRequestID(code, message, "")
}

// NewErrorResponseWithRequestID creates an error response tagged with the request ID
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	}
}

// NewValidationErrorResponse creates a 400 body listing the rejected fields
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      ErrCodeValidation,
			Message:   message,
			RequestID: requestID,
			Details:   details,
		},
	}
}

// NewResultResponse renders an application result. Successful results
// carry data; failed ones carry the first error as the error summary.
// Both keep every message so the client sees warnings and infos too.
func NewResultResponse(result shared.Result, data any, requestID string) Response {
	resp := Response{
		Success:  result.Succeeded(),
		Messages: result.Messages(),
	}
	if result.Succeeded() {
		resp.Data = data
		return resp
	}
	first, _ := result.FirstError()
	resp.Error = &ErrorInfo{
		Code:      ErrorCodeForResult(result),
		Message:   first.Text,
		RequestID: requestID,
	}
	return resp
}
