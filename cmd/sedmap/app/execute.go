package app

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/sedmap/internal/cmd/alerts"
	"github.com/agentstation/sedmap/internal/cmd/output"
)

// Execute runs the CLI with args, not including the program name.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.rootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *App) rootCommand() *cobra.Command {
	var flags Flags

	root := &cobra.Command{
		Use:     "sedmap",
		Short:   "Assemble SEDs from SIMPLE-style catalogs",
		Version: a.build.Version,
		Long: `Sedmap reads an astronomical catalog laid out like the SIMPLE archive
(SQLite, Postgres or a YAML document) and assembles the Spectral Energy
Distribution of one object: position, parallax, spectral type,
photometry and spectra, each tagged with its bibcode.

Records that are missing or malformed are reported and skipped; a load
never fails because of one bad row.`,
		// Flags are parsed by now; they override file and environment settings.
		PersistentPreRun: func(*cobra.Command, []string) {
			a.config.ApplyFlags(flags)
			a.config.Format = string(output.DetectFormat(a.config.Format))
			logger := NewLogger(a.config)
			a.logger = &logger
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddGroup(
		&cobra.Group{ID: "sed", Title: "SED Commands:"},
		&cobra.Group{ID: "catalog", Title: "Catalog Commands:"},
	)

	pf := root.PersistentFlags()
	pf.StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.sedmap.yaml)")
	pf.StringVar(&flags.Database, "db", "", "catalog database: SQLite path, postgres:// URL or YAML document (default "+a.config.Database+")")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	pf.BoolVarP(&flags.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	pf.BoolVar(&flags.NoColor, "no-color", false, "disable colored output")
	pf.StringVarP(&flags.Format, "format", "o", "", "output format: table, json, yaml")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	root.SetVersionTemplate("sedmap {{.Version}}\n")
	if a.out != nil {
		root.SetOut(a.out)
	}

	a.registerCommands(root)
	return root
}

// ExitOnError reports err on stderr and exits with status 1. It does
// nothing when err is nil.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	reportError(os.Stderr, err)
	os.Exit(1)
}

func reportError(w io.Writer, err error) {
	//nolint:errcheck // nothing left to report a failed write to
	_ = alerts.NewWriter(w).Write(alerts.NewError(err.Error()))
}
