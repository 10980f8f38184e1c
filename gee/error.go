package gee

// ErrorResponse is the body of every error written through AbortWithError.
// The request id travels in the X-Request-ID response header.
type ErrorResponse struct {
	Error string `json:"error"`
}

func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}
