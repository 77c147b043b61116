package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jamesprial/odb-target-loader/internal/auth"
	"github.com/jamesprial/odb-target-loader/internal/config"
	"github.com/jamesprial/odb-target-loader/internal/graphql"
	"github.com/jamesprial/odb-target-loader/internal/loader"
	"github.com/jamesprial/odb-target-loader/internal/odb"
	"github.com/jamesprial/odb-target-loader/internal/safety"
	"github.com/jamesprial/odb-target-loader/internal/tools"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog and loader as MCP tools over Streamable HTTP",
		Long: `Serve the catalog and loader as MCP tools over Streamable HTTP.

Clients authenticate with "Authorization: Bearer <token>". The token comes
from ODB_MCP_AUTH_TOKEN or server.auth_token; when neither is set a random
token is generated and logged at startup.

Tools that create targets answer their first call with a confirmation token
and act only when called again with it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.resolve(cmd, nil, nil)
			if err != nil {
				return configError(err)
			}
			if cmd.Flags().Changed("host") {
				s.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				s.cfg.Server.Port = port
			}
			if err := serve(cmd.Context(), s); err != nil {
				return &exitError{code: 2, err: err}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen address (default from config, 127.0.0.1)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from config, 8080)")
	return cmd
}

// newMCPServer builds the MCP server with every tool registered.
func newMCPServer(s *settings, client graphql.Client, audit *safety.AuditLogger) (*server.MCPServer, []string, error) {
	sub, err := odb.NewSubmitter(client, s.cfg.ProgramID, odb.WithLogger(s.log))
	if err != nil {
		return nil, nil, err
	}

	creating := make([]string, 0, len(odb.CreatingTools)+len(loader.CreatingTools))
	creating = append(creating, odb.CreatingTools...)
	creating = append(creating, loader.CreatingTools...)
	confirm := safety.NewConfirmationTracker(creating)

	mcpServer := server.NewMCPServer(
		"odb-target-loader",
		version,
		server.WithToolCapabilities(false),
	)

	var registrations []tools.Registration
	registrations = append(registrations, odb.CatalogTools(s.targets, sub, confirm, audit)...)
	registrations = append(registrations, loader.LoadTools(s.targets, sub, confirm, audit,
		loader.WithLogger(s.log),
		loader.WithAudit(audit),
		loader.WithRate(s.cfg.Rate.PerSecond, s.cfg.Rate.Burst),
	)...)
	registrations = append(registrations, graphql.GraphQLTools(client, audit)...)

	return mcpServer, tools.RegisterAll(mcpServer, registrations), nil
}

// newHTTPHandler serves mcpServer over Streamable HTTP behind the bearer
// token check.
func newHTTPHandler(s *settings, mcpServer *server.MCPServer) http.Handler {
	return auth.NewAuthMiddleware(s.cfg.Server.AuthToken, s.log)(server.NewStreamableHTTPServer(mcpServer))
}

func serve(ctx context.Context, s *settings) error {
	client, err := graphql.NewHTTPClient(s.cfg.GraphQL)
	if err != nil {
		return err
	}

	configured := s.cfg.Server.AuthToken != ""
	token, err := config.EnsureAuthToken(s.cfg)
	if err != nil {
		return err
	}
	if !configured {
		s.log.Warn().Str("token", token).Msg("generated MCP auth token; set ODB_MCP_AUTH_TOKEN to persist it")
	}

	audit, closer := openAudit(s.cfg, s.log)
	defer closer.Close()

	mcpServer, names, err := newMCPServer(s, client, audit)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.Port))
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           newHTTPHandler(s, mcpServer),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().
			Str("addr", addr).
			Str("endpoint", client.Endpoint()).
			Strs("tools", names).
			Msg("odb-loader listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	s.log.Info().Msg("server stopped")
	return nil
}
