package httpsession

import (
	"errors"
	"fmt"
)

var (
	// ErrRequestFailed is matched by every transport failure (dns, connect, tls, timeout).
	ErrRequestFailed = errors.New("request failed")
	// ErrTimeout is matched when the deadline of a call expired.
	ErrTimeout = errors.New("request timed out")
	// ErrTooManyRedirects is matched when the redirect bound was exceeded,
	// it does not match ErrRequestFailed.
	ErrTooManyRedirects = errors.New("too many redirects")
	// ErrUnreadableBody is matched when the response arrived but its body could not be read.
	ErrUnreadableBody = errors.New("unreadable response body")
)

// RequestError is a transport failure.
type RequestError struct {
	Method  string
	Url     string
	Timeout bool
	Err     error
}

func (e *RequestError) Error() string {
	kind := ErrRequestFailed
	if e.Timeout {
		kind = ErrTimeout
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Method, e.Url, kind, e.Err)
}

func (e *RequestError) Unwrap() []error {
	errs := []error{ErrRequestFailed}
	if e.Timeout {
		errs = append(errs, ErrTimeout)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// RedirectError is returned when a redirect chain is longer than allowed.
type RedirectError struct {
	Chain RedirectChain
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("%s (%d hops, last %s)", ErrTooManyRedirects, len(e.Chain), e.Chain.Last().Url)
}

func (e *RedirectError) Unwrap() error {
	return ErrTooManyRedirects
}

// BodyError is returned when a response body could not be read.
type BodyError struct {
	Url string
	Err error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Url, ErrUnreadableBody, e.Err)
}

func (e *BodyError) Unwrap() []error {
	return []error{ErrUnreadableBody, e.Err}
}
