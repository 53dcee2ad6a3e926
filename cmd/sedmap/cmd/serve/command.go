// Package serve implements the serve command, which exposes SED loading
// and catalog lookups over a read-only HTTP API.
package serve

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/sedmap/internal/appcontext"
	"github.com/agentstation/sedmap/internal/server"
	"github.com/agentstation/sedmap/pkg/errors"
)

// Environment variables consulted when the matching flag is not set.
const (
	EnvPort = "SEDMAP_HTTP_PORT"
	EnvHost = "SEDMAP_HTTP_HOST"
)

// NewCommand creates the serve command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	defaults := server.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve SEDs over HTTP",
		Long: `Start a read-only REST API over the configured catalog.

Endpoints (under the path prefix, /api/v1 by default):
  GET /sed/{name}              assemble an SED (?only=, ?uncertainty_scale=)
  GET /search?name=            search the catalog for an object
  GET /inventory/{name}        list the rows held for an object (?table=)
  GET /bibcodes/{publication}  resolve a publication key
  GET /health, /ready          liveness and readiness probes
  GET /metrics                 Prometheus loader metrics (outside the prefix)

Every request assembles its own SED; the catalog connection is shared.`,
		Example: `  # Start on default port 8080
  sedmap serve

  # Bind all interfaces with CORS for one origin
  sedmap serve --host 0.0.0.0 --cors-origins https://sed.example.org`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFromFlags(cmd)
			if err != nil {
				return err
			}

			// Open the catalog up front so a bad --db fails before listening.
			if _, err := app.Catalog(cmd.Context()); err != nil {
				return err
			}

			srv, err := server.New(app, cfg)
			if err != nil {
				return err
			}
			app.Logger().Info().
				Str("addr", cfg.Addr()).
				Bool("cors", cfg.CORSEnabled).
				Bool("metrics", cfg.MetricsEnabled).
				Msg("Starting API server")
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().IntP("port", "p", defaults.Port, "Server port")
	cmd.Flags().String("host", defaults.Host, "Bind address")
	cmd.Flags().String("prefix", defaults.PathPrefix, "API path prefix")
	cmd.Flags().Bool("cors", false, "Enable CORS for all origins")
	cmd.Flags().StringSlice("cors-origins", []string{}, "Allowed CORS origins (comma-separated)")
	cmd.Flags().Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout")
	cmd.Flags().Duration("idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")
	cmd.Flags().Bool("metrics", defaults.MetricsEnabled, "Enable metrics endpoint")

	return cmd
}

// configFromFlags builds the server configuration. SEDMAP_HTTP_PORT and
// SEDMAP_HTTP_HOST apply only when the flag was not given.
func configFromFlags(cmd *cobra.Command) (server.Config, error) {
	cfg := server.DefaultConfig()
	flags := cmd.Flags()

	cfg.Port, _ = flags.GetInt("port")
	cfg.Host, _ = flags.GetString("host")
	cfg.PathPrefix, _ = flags.GetString("prefix")
	cfg.CORSEnabled, _ = flags.GetBool("cors")
	cfg.CORSOrigins, _ = flags.GetStringSlice("cors-origins")
	cfg.ReadTimeout, _ = flags.GetDuration("read-timeout")
	cfg.WriteTimeout, _ = flags.GetDuration("write-timeout")
	cfg.IdleTimeout, _ = flags.GetDuration("idle-timeout")
	cfg.MetricsEnabled, _ = flags.GetBool("metrics")

	if len(cfg.CORSOrigins) > 0 {
		cfg.CORSEnabled = true
	}

	if env := os.Getenv(EnvPort); env != "" && !flags.Changed("port") {
		p, err := parsePort(env)
		if err != nil {
			return cfg, errors.WrapValidation(EnvPort, err)
		}
		cfg.Port = p
	}
	if env := os.Getenv(EnvHost); env != "" && !flags.Changed("host") {
		cfg.Host = env
	}

	return cfg, cfg.Validate()
}

// parsePort safely parses a port string to integer.
func parsePort(portStr string) (int, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid port number: %s", portStr)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port out of range: %d", port)
	}
	return port, nil
}
