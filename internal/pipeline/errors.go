package pipeline

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a pipeline failure. The HTTP mapping is a total function
// over Kind so handlers never inspect upstream error types themselves.
type Kind int

const (
	KindValidation Kind = iota
	KindUpstream
	KindEmptyGeneration
	KindAssetFetch
	KindPublish
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUpstream:
		return "upstream"
	case KindEmptyGeneration:
		return "empty_generation"
	case KindAssetFetch:
		return "asset_fetch"
	case KindPublish:
		return "publish"
	default:
		return "internal"
	}
}

// Error is a classified pipeline failure. Status is the upstream HTTP code
// when one was observed, zero otherwise.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the failure to a response status.
// Empty generations map to 400: they are caused by the request content
// (typically a safety rejection), not by the service.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindEmptyGeneration, KindAssetFetch:
		return http.StatusBadRequest
	case KindUpstream:
		if e.Status >= 400 && e.Status < 600 {
			return e.Status
		}
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Upstream wraps a model-service failure, carrying the upstream HTTP code
// when one is known (zero otherwise).
func Upstream(message string, status int, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Status: status, Err: err}
}

func EmptyGeneration(message string) *Error {
	return &Error{Kind: KindEmptyGeneration, Message: message}
}

func AssetFetch(message string, err error) *Error {
	return &Error{Kind: KindAssetFetch, Message: message, Err: err}
}

func Publish(message string, err error) *Error {
	return &Error{Kind: KindPublish, Message: message, Err: err}
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// Classify returns err as a *Error, wrapping unclassified failures as
// KindInternal.
func Classify(err error) *Error {
	var perr *Error
	if errors.As(err, &perr) {
		return perr
	}
	return Internal("Internal server error.", err)
}
