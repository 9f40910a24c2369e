// Package apperr defines the application-layer error shape shared by all
// services. An Error carries everything the transport adapter needs to map
// it onto an HTTP response without inspecting service internals.
package apperr

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// NotFound builds a 404 error for an absent entity.
func NotFound(code, message string) *Error {
	return &Error{Status: 404, Code: code, Message: message}
}

// Invalid builds a 422 validation error. Details maps field names to the
// reason each was rejected.
func Invalid(message string, details map[string]any) *Error {
	return &Error{Status: 422, Code: "VALIDATION_ERROR", Message: message, Details: details}
}

// Forbidden builds a 403 error for an authorization failure.
func Forbidden(message string) *Error {
	return &Error{Status: 403, Code: "FORBIDDEN", Message: message}
}
