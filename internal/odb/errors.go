package odb

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies a submission problem.
type ErrorKind int

const (
	// ClientRejection is a 4xx response carrying GraphQL errors. It tags
	// Failure results and never appears on a FatalError.
	ClientRejection ErrorKind = iota + 1
	// ServerOrTransportFailure is a 5xx or other unexpected status, or a
	// request that never produced a response.
	ServerOrTransportFailure
	// MalformedResponse is a 200 body without the created target, or a 4xx
	// body without an errors list.
	MalformedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case ClientRejection:
		return "client rejection"
	case ServerOrTransportFailure:
		return "server or transport failure"
	case MalformedResponse:
		return "malformed response"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// FatalError aborts a load run. StatusCode is zero when no response arrived.
type FatalError struct {
	Kind       ErrorKind
	Target     string
	StatusCode int
	Err        error
}

func (e *FatalError) Error() string {
	msg := fmt.Sprintf("odb: %s submitting %q", e.Kind, e.Target)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d %s)", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
