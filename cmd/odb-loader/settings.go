package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jamesprial/odb-target-loader/internal/catalog"
	"github.com/jamesprial/odb-target-loader/internal/config"
	"github.com/jamesprial/odb-target-loader/internal/logging"
	"github.com/jamesprial/odb-target-loader/internal/safety"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath  string
	envFiles    []string
	url         string
	timeout     int
	program     string
	catalogPath string
	logLevel    string
	logFormat   string
}

// settings is everything a subcommand needs after flags, environment, and
// file have been merged.
type settings struct {
	cfg     *config.Config
	log     zerolog.Logger
	targets []catalog.Target
}

// resolve builds the effective configuration, logger, and selected targets.
// extraAllow and extraDeny are appended to the configured selection.
func (o *rootOptions) resolve(cmd *cobra.Command, extraAllow, extraDeny []string) (*settings, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	targets, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	filter, err := safety.NewFilter(
		append(append([]string(nil), cfg.Selection.Allowlist...), extraAllow...),
		append(append([]string(nil), cfg.Selection.Denylist...), extraDeny...),
	)
	if err != nil {
		return nil, fmt.Errorf("target selection: %w", err)
	}
	selected := catalog.Select(targets, filter.IsAllowed)
	if len(selected) < len(targets) {
		log.Debug().Strs("selected", catalog.Names(selected)).Int("catalog", len(targets)).Msg("targets filtered")
	}

	return &settings{cfg: cfg, log: log, targets: selected}, nil
}

func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(o.envFiles...); err != nil {
		return nil, err
	}

	path := o.configPath
	if path == "" {
		path = os.Getenv("ODB_CONFIG_PATH")
	}
	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	config.ApplyEnvOverrides(cfg)

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.GraphQL.URL = o.url
	}
	if flags.Changed("timeout") {
		cfg.GraphQL.Timeout = o.timeout
	}
	if flags.Changed("program") {
		cfg.ProgramID = o.program
	}
	if flags.Changed("catalog") {
		cfg.CatalogPath = o.catalogPath
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadCatalog(path string) ([]catalog.Target, error) {
	if path == "" {
		return catalog.Builtin(), nil
	}
	return catalog.LoadFile(path)
}

// openAudit opens the audit log when auditing is enabled. If the file cannot
// be opened, auditing is disabled with a warning.
func openAudit(cfg *config.Config, log zerolog.Logger) (*safety.AuditLogger, io.Closer) {
	if !cfg.Audit.Enabled {
		return nil, io.NopCloser(nil)
	}
	f, err := os.OpenFile(cfg.Audit.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.Audit.LogPath).Msg("could not open audit log; auditing disabled")
		return nil, io.NopCloser(nil)
	}
	return safety.NewAuditLogger(f), f
}

// configError marks a failure that happened before any submission.
func configError(err error) error {
	return &exitError{code: 2, err: err}
}
