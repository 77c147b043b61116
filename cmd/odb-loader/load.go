package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jamesprial/odb-target-loader/internal/config"
	"github.com/jamesprial/odb-target-loader/internal/graphql"
	"github.com/jamesprial/odb-target-loader/internal/loader"
	"github.com/jamesprial/odb-target-loader/internal/odb"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type loadOptions struct {
	only    []string
	exclude []string
	dryRun  bool
	rate    float64
	burst   int
}

func newLoadCmd(root *rootOptions) *cobra.Command {
	opts := &loadOptions{}

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Create every selected catalog target",
		Long: `Create every selected catalog target in catalog order.

Each created target is printed to stdout as indented JSON; each rejected
target prints its GraphQL errors instead and the run continues. A server or
transport failure stops the run.

Exit status is 0 when every target was created, 1 when the service rejected
at least one, and 2 when the run stopped early or never started.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, root, opts)
		},
	}

	opts.bind(cmd.Flags())
	return cmd
}

func (o *loadOptions) bind(f *pflag.FlagSet) {
	f.StringSliceVar(&o.only, "only", nil, "glob patterns of target names to load")
	f.StringSliceVar(&o.exclude, "exclude", nil, "glob patterns of target names to skip")
	f.BoolVar(&o.dryRun, "dry-run", false, "print request bodies instead of sending them")
	f.Float64Var(&o.rate, "rate", 0, "maximum submissions per second; 0 disables pacing (default from config)")
	f.IntVar(&o.burst, "burst", 0, "submissions allowed back to back (default from config)")
}

// pacing returns the effective rate and burst: flags that were set win over
// cfg, including an explicit --rate 0.
func (o *loadOptions) pacing(f *pflag.FlagSet, cfg config.RateConfig) (float64, int, error) {
	rate, burst := cfg.PerSecond, cfg.Burst
	if f.Changed("rate") {
		rate = o.rate
	}
	if f.Changed("burst") {
		burst = o.burst
	}
	if rate < 0 {
		return 0, 0, fmt.Errorf("--rate must not be negative, got %v", rate)
	}
	return rate, burst, nil
}

func runLoad(cmd *cobra.Command, root *rootOptions, opts *loadOptions) error {
	s, err := root.resolve(cmd, opts.only, opts.exclude)
	if err != nil {
		return configError(err)
	}
	if len(s.targets) == 0 {
		s.log.Warn().Msg("no catalog targets selected; nothing to do")
		return nil
	}

	if opts.dryRun {
		if err := loader.DryRun(cmd.OutOrStdout(), s.targets, s.cfg.ProgramID); err != nil {
			return configError(err)
		}
		return nil
	}

	client, err := graphql.NewHTTPClient(s.cfg.GraphQL)
	if err != nil {
		return configError(err)
	}
	sub, err := odb.NewSubmitter(client, s.cfg.ProgramID, odb.WithLogger(s.log))
	if err != nil {
		return configError(err)
	}

	rate, burst, err := opts.pacing(cmd.Flags(), s.cfg.Rate)
	if err != nil {
		return configError(err)
	}

	audit, closer := openAudit(s.cfg, s.log)
	defer closer.Close()

	ld := loader.New(sub, loader.NewJSONReporter(cmd.OutOrStdout()),
		loader.WithLogger(s.log.With().Str("endpoint", client.Endpoint()).Str("program", sub.ProgramID()).Logger()),
		loader.WithAudit(audit),
		loader.WithRate(rate, burst),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := ld.Run(ctx, s.targets)
	if err != nil {
		return &exitError{code: sum.ExitCode(), err: err}
	}
	if code := sum.ExitCode(); code != loader.ExitOK {
		return &exitError{code: code}
	}
	return nil
}
