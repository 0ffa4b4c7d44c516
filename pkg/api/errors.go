package api

import (
	"errors"
	"fmt"
)

var (
	// ErrRequestFailed wraps every session failure (transport, timeout, redirects).
	ErrRequestFailed = errors.New("api: request failed")
	// ErrCannotDecodeResponse is returned when the body is not a json envelope.
	ErrCannotDecodeResponse = errors.New("api: cannot decode response json")

	ErrAuthenticationRequired = errors.New("authentication required")
	ErrNotFound               = errors.New("not found")
)

// ApiError is an error reported by the api inside a failure envelope.
type ApiError struct {
	Code    int
	Message string
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}

func (e *ApiError) Is(target error) bool {
	switch target {
	case ErrAuthenticationRequired:
		return e.Code == 403
	case ErrNotFound:
		return e.Code == 404
	}
	return false
}
