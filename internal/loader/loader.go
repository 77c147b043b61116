// Package loader drives a catalog through the submission client, one target
// at a time, and reports each outcome.
package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jamesprial/odb-target-loader/internal/catalog"
	"github.com/jamesprial/odb-target-loader/internal/odb"
	"github.com/jamesprial/odb-target-loader/internal/safety"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Exit codes for a finished run.
const (
	ExitOK       = 0
	ExitRejected = 1
	ExitAborted  = 2
)

// Outcome is one recoverable submission result in catalog order.
type Outcome struct {
	Index  int
	Result odb.Result
}

// Reporter receives every Success and Failure as it happens.
type Reporter interface {
	Report(o Outcome) error
}

// Summary counts what a run did.
type Summary struct {
	RunID     string `json:"runId"`
	Total     int    `json:"total"`
	Attempted int    `json:"attempted"`
	Succeeded int    `json:"succeeded"`
	Rejected  int    `json:"rejected"`
	Aborted   bool   `json:"aborted"`
}

// ExitCode is ExitOK only when every target succeeded.
func (s Summary) ExitCode() int {
	switch {
	case s.Aborted:
		return ExitAborted
	case s.Rejected > 0:
		return ExitRejected
	default:
		return ExitOK
	}
}

// Loader submits targets sequentially.
type Loader struct {
	sub      odb.TargetSubmitter
	reporter Reporter
	log      zerolog.Logger
	audit    *safety.AuditLogger
	limiter  *rate.Limiter
	runID    string
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the run logger.
func WithLogger(l zerolog.Logger) Option {
	return func(ld *Loader) { ld.log = l }
}

// WithAudit records every submission to audit.
func WithAudit(audit *safety.AuditLogger) Option {
	return func(ld *Loader) { ld.audit = audit }
}

// WithRate spaces submissions to at most perSecond, allowing bursts of
// burst. A non-positive perSecond disables pacing.
func WithRate(perSecond float64, burst int) Option {
	return func(ld *Loader) {
		if perSecond <= 0 {
			ld.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		ld.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(ld *Loader) { ld.runID = id }
}

// New returns a Loader that submits through sub and reports to reporter.
func New(sub odb.TargetSubmitter, reporter Reporter, opts ...Option) *Loader {
	if sub == nil {
		panic("loader: submitter must not be nil")
	}
	if reporter == nil {
		panic("loader: reporter must not be nil")
	}
	ld := &Loader{
		sub:      sub,
		reporter: reporter,
		log:      zerolog.Nop(),
		runID:    uuid.NewString(),
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// RunID identifies this loader's runs in logs and the audit trail.
func (ld *Loader) RunID() string {
	return ld.runID
}

// Run submits targets in order. Successes and client rejections are reported
// and the run moves on. The first fatal error, reporter error, or
// cancellation stops the run: later targets are not attempted, and the error
// is returned with the summary so far.
func (ld *Loader) Run(ctx context.Context, targets []catalog.Target) (Summary, error) {
	sum := Summary{RunID: ld.runID, Total: len(targets)}
	log := ld.log.With().Str("run_id", ld.runID).Logger()

	log.Info().Int("targets", len(targets)).Msg("load started")

	for i, t := range targets {
		if err := ld.wait(ctx); err != nil {
			sum.Aborted = true
			log.Error().Err(err).Str("target", t.Name).Msg("load cancelled")
			return sum, fmt.Errorf("loader: before %q: %w", t.Name, err)
		}

		start := time.Now()
		sum.Attempted++
		res, err := ld.sub.Submit(ctx, t)
		if err != nil {
			sum.Aborted = true
			ld.record(t.Name, "fatal: "+err.Error(), statusOf(err), start)
			log.Error().Err(err).Str("target", t.Name).Int("index", i).Msg("submission failed; aborting run")
			return sum, fmt.Errorf("loader: %w", err)
		}

		switch res.Status {
		case odb.StatusSuccess:
			sum.Succeeded++
			ev := log.Info().Str("target", t.Name).Int("status", res.StatusCode)
			if created, err := odb.DecodeCreated(res.Payload); err == nil && created.ID != "" {
				ev = ev.Str("id", created.ID)
			}
			ev.Msg("target created")
		case odb.StatusFailure:
			sum.Rejected++
			msgs := make([]string, len(res.Messages))
			for j, m := range res.Messages {
				msgs[j] = m.Message
			}
			log.Warn().Str("target", t.Name).Int("status", res.StatusCode).Strs("errors", msgs).Msg("target rejected")
		}
		ld.record(t.Name, res.Status.String(), res.StatusCode, start)

		if err := ld.reporter.Report(Outcome{Index: i, Result: res}); err != nil {
			sum.Aborted = true
			return sum, fmt.Errorf("loader: report %q: %w", t.Name, err)
		}
	}

	log.Info().
		Int("succeeded", sum.Succeeded).
		Int("rejected", sum.Rejected).
		Msg("load finished")
	return sum, nil
}

func (ld *Loader) wait(ctx context.Context) error {
	if ld.limiter != nil {
		return ld.limiter.Wait(ctx)
	}
	return ctx.Err()
}

func (ld *Loader) record(target, result string, status int, start time.Time) {
	if ld.audit == nil {
		return
	}
	if err := ld.audit.Log(safety.AuditEntry{
		Timestamp:  start,
		RunID:      ld.runID,
		Action:     "submit",
		Target:     target,
		Result:     result,
		StatusCode: status,
		Duration:   time.Since(start),
	}); err != nil {
		ld.log.Warn().Err(err).Msg("audit write failed")
	}
}

func statusOf(err error) int {
	var fe *odb.FatalError
	if errors.As(err, &fe) {
		return fe.StatusCode
	}
	return 0
}
