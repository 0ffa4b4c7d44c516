package web

import (
	"errors"
	"fmt"
)

var (
	ErrRequestFailed          = errors.New("web: request failed")
	ErrUnreadableResponse     = errors.New("web: could not read response")
	ErrCouldNotParseHtml      = errors.New("web: could not parse html")
	ErrAuthenticationRequired = errors.New("web: authentication required")
	ErrInvalidCredentials     = errors.New("web: invalid credentials")
)

// StatusError is returned for responses with a status >= 400.
type StatusError struct {
	Method string
	Url    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("web: %s %s: bad status code %d", e.Method, e.Url, e.Status)
}
