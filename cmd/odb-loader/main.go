// Package main is the odb-loader command: it creates catalog targets in an
// observing database through its GraphQL API, or serves the same operations
// as MCP tools.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// exitError carries a process exit code out of a command. A nil err means
// the command already reported everything it had to say.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return 0
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "odb-loader: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "odb-loader: %v\n", err)
	return 2
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "odb-loader",
		Short: "Create sidereal targets in an observing database",
		Long: `odb-loader submits a catalog of sidereal targets to an observing database
through its CreateSiderealTarget GraphQL mutation, one target at a time and
in catalog order.

Settings come from flags, then ODB_* environment variables (a .env file is
read if present), then the YAML file named by --config or ODB_CONFIG_PATH,
then built-in defaults.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "YAML config file (default $ODB_CONFIG_PATH)")
	pf.StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv files to read (default .env)")
	pf.StringVar(&opts.url, "url", "", "GraphQL endpoint URL")
	pf.IntVar(&opts.timeout, "timeout", 0, "HTTP request timeout in seconds")
	pf.StringVar(&opts.program, "program", "", "program id every created target joins")
	pf.StringVar(&opts.catalogPath, "catalog", "", "YAML catalog file (default: built-in catalog)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", "", "log format: console or json")

	root.AddCommand(
		newLoadCmd(opts),
		newCatalogCmd(opts),
		newServeCmd(opts),
	)
	return root
}
