package generation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorKind classifies a generation service failure.
type ErrorKind string

const (
	KindTimeout     ErrorKind = "timeout"
	KindNetwork     ErrorKind = "network"
	KindRateLimited ErrorKind = "rate_limited"
	KindQuota       ErrorKind = "quota"
	KindServer      ErrorKind = "server"
	KindBadRequest  ErrorKind = "bad_request"
	KindDecode      ErrorKind = "decode"
)

var transientKinds = map[ErrorKind]bool{
	KindTimeout:     true,
	KindNetwork:     true,
	KindRateLimited: true,
	KindServer:      true,
}

// ServiceError wraps a failed call to an external service.
type ServiceError struct {
	Op         string
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Op, e.Kind, e.StatusCode, msg)
	}

	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// Transient reports whether retrying the call may succeed.
func (e *ServiceError) Transient() bool {
	return transientKinds[e.Kind]
}

func NewServiceError(op string, kind ErrorKind, err error) *ServiceError {
	return &ServiceError{Op: op, Kind: kind, Err: err}
}

// IsTransient reports whether err is worth retrying. Deadline expiry counts
// as a timeout.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Transient()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

// KindFromStatus maps an HTTP status code to an error kind.
func KindFromStatus(status int) ErrorKind {
	switch {
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusPaymentRequired:
		return KindQuota
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return KindTimeout
	case status >= http.StatusInternalServerError:
		return KindServer
	default:
		return KindBadRequest
	}
}

// ClassifyTransportError wraps an error from an HTTP round trip.
func ClassifyTransportError(op string, err error) *ServiceError {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewServiceError(op, KindTimeout, err)
	}

	return NewServiceError(op, KindNetwork, err)
}
