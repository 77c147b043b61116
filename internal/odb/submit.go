package odb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jamesprial/odb-target-loader/internal/catalog"
	"github.com/jamesprial/odb-target-loader/internal/graphql"
	"github.com/rs/zerolog"
)

// Status tags a Result.
type Status int

const (
	// StatusSuccess means the target was created; Payload holds it.
	StatusSuccess Status = iota + 1
	// StatusFailure means the service rejected the target; Errors holds why.
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the recoverable outcome of one submission.
type Result struct {
	Target     string
	Status     Status
	StatusCode int
	// Kind is ClientRejection on a Failure and zero on a Success.
	Kind ErrorKind
	// Payload is data.createSiderealTarget exactly as returned. Success only.
	Payload json.RawMessage
	// Errors is the response "errors" array exactly as returned. Failure only.
	Errors json.RawMessage
	// Messages is Errors decoded.
	Messages []graphql.Error
}

// Submitter creates targets in one program through one endpoint.
type Submitter struct {
	client    graphql.Client
	programID string
	log       zerolog.Logger
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithLogger sets the logger used for per-request debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Submitter) { s.log = l }
}

// NewSubmitter returns a Submitter that posts through client and assigns
// every target to programID.
func NewSubmitter(client graphql.Client, programID string, opts ...Option) (*Submitter, error) {
	if client == nil {
		return nil, errors.New("odb: graphql client is required")
	}
	if programID == "" {
		return nil, ErrEmptyProgramID
	}
	s := &Submitter{client: client, programID: programID, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ProgramID returns the program targets are created in.
func (s *Submitter) ProgramID() string {
	return s.programID
}

// Submit sends one CreateSiderealTarget mutation for t and classifies the
// response:
//   - 200 with a created target: Result with StatusSuccess.
//   - 4xx with errors: Result with StatusFailure and Kind ClientRejection.
//   - anything else, including a 200 without a created target: a
//     *FatalError and a zero Result.
//
// Every call is a separate remote creation; submitting the same target twice
// creates two entities.
func (s *Submitter) Submit(ctx context.Context, t catalog.Target) (Result, error) {
	req, err := BuildRequest(t, s.programID)
	if err != nil {
		return Result{}, err
	}

	s.log.Debug().Str("target", t.Name).Str("program", s.programID).Msg("posting create mutation")

	resp, err := s.client.Post(ctx, req)
	if err != nil {
		return Result{}, &FatalError{Kind: ServerOrTransportFailure, Target: t.Name, Err: err}
	}

	return classify(t.Name, resp)
}

// classify maps an HTTP response to a Result or a FatalError.
func classify(target string, resp *graphql.Response) (Result, error) {
	code := resp.StatusCode
	malformed := func(err error) (Result, error) {
		return Result{}, &FatalError{Kind: MalformedResponse, Target: target, StatusCode: code, Err: err}
	}

	switch {
	case code == http.StatusOK:
		var env graphql.Envelope
		if err := json.Unmarshal(resp.Body, &env); err != nil {
			return malformed(fmt.Errorf("decode body: %w", err))
		}
		var data createResponseData
		if !isNull(env.Data) {
			if err := json.Unmarshal(env.Data, &data); err != nil {
				return malformed(fmt.Errorf("decode data: %w", err))
			}
		}
		if isNull(data.CreateSiderealTarget) {
			if !isNull(env.Errors) {
				return malformed(fmt.Errorf("response has no data.createSiderealTarget; errors: %s", truncate(env.Errors, 512)))
			}
			return malformed(errors.New("response has no data.createSiderealTarget"))
		}
		return Result{Target: target, Status: StatusSuccess, StatusCode: code, Payload: data.CreateSiderealTarget}, nil

	case code >= 400 && code <= 499:
		var env graphql.Envelope
		if err := json.Unmarshal(resp.Body, &env); err != nil {
			return malformed(fmt.Errorf("decode body: %w", err))
		}
		if isNull(env.Errors) {
			return malformed(errors.New("response has no errors list"))
		}
		return failure(target, code, env.Errors, malformed)

	default:
		return Result{}, &FatalError{
			Kind:       ServerOrTransportFailure,
			Target:     target,
			StatusCode: code,
			Err:        fmt.Errorf("unexpected status; body: %s", truncate(resp.Body, 512)),
		}
	}
}

func failure(target string, code int, raw json.RawMessage, malformed func(error) (Result, error)) (Result, error) {
	msgs, err := graphql.DecodeErrors(raw)
	if err != nil {
		return malformed(err)
	}
	return Result{Target: target, Status: StatusFailure, StatusCode: code, Kind: ClientRejection, Errors: raw, Messages: msgs}, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
