package response

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Field      string      `json:"field,omitempty"` // failing field for validation errors
}

// ListMeta carries pagination info alongside list payloads
type ListMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// List wraps a paginated collection
type List struct {
	Items interface{} `json:"items"`
	Meta  ListMeta    `json:"meta"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Paginated returns a success response wrapping a paginated collection
func Paginated(statusCode int, items interface{}, total int64, page, limit int) Response {
	return Success(statusCode, List{
		Items: items,
		Meta:  ListMeta{Total: total, Page: page, Limit: limit},
	})
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// FieldError returns an error response scoped to a single request field
func FieldError(statusCode int, field, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
		Field:      field,
	}
}
