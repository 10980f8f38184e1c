package assetproxy

import (
	"errors"
	"fmt"
)

// Kind classifies proxy failures for translation at the route boundary.
type Kind int

const (
	KindBadRequest Kind = iota + 1
	KindUpstreamRejected
	KindUpstreamUnavailable
	KindUpstreamTimeout
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUpstreamRejected:
		return "upstream_rejected"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindUpstreamTimeout:
		return "upstream_timeout"
	default:
		return "unknown"
	}
}

// Error is returned by every Proxy operation that fails.
// UpstreamStatus is set only for KindUpstreamRejected.
type Error struct {
	Kind           Kind
	UpstreamStatus int
	Msg            string
	Err            error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

var ErrMissingCredentials = &Error{Kind: KindBadRequest, Msg: "Missing googlePhotosUrl or accessToken"}

func badRequest(msg string) *Error {
	return &Error{Kind: KindBadRequest, Msg: msg}
}

func rejected(prefix string, status int, statusText string) *Error {
	return &Error{
		Kind:           KindUpstreamRejected,
		UpstreamStatus: status,
		Msg:            fmt.Sprintf("%s: %s", prefix, statusText),
	}
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}
