package cache

// ErrorHandler carries the HTTP status a cache failure should surface as.
type ErrorHandler struct {
	error
	StatusCode int
}

func NewErrorHandler(err error, statusCode int) ErrorHandler {
	return ErrorHandler{error: err, StatusCode: statusCode}
}

func (e ErrorHandler) Unwrap() error { return e.error }
