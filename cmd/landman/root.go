package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stwalsh4118/landman/api/internal/config"
	"github.com/stwalsh4118/landman/api/internal/logger"
	"github.com/stwalsh4118/landman/api/internal/metrics"
	"github.com/stwalsh4118/landman/api/internal/repository"
	"github.com/stwalsh4118/landman/api/internal/resolution"
	"github.com/stwalsh4118/landman/api/internal/services"
)

// cli carries the flags and the services every subcommand shares.
type cli struct {
	stdout  io.Writer
	stderr  io.Writer
	pretty  bool
	verbose bool

	log      *logger.Logger
	parser   services.ParseService
	registry services.RegistryService
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	app := &cli{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "landman",
		Short: "Parse mineral-rights documents and resolve the parties they name",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.BoolVar(&app.pretty, "pretty", false, "indent JSON output")
	pf.BoolVarP(&app.verbose, "verbose", "v", false, "debug logging on stderr")

	cmd.AddCommand(
		app.exhibitCommand(),
		app.titleCommand(),
		app.revenueCommand(),
		app.resolveCommand(),
	)
	return cmd
}

// init builds the services over a fresh in-memory registry. Resolver and
// parse settings come from the same environment the server reads.
func (a *cli) init() error {
	env := "production"
	if a.verbose {
		env = "development"
	}
	a.log = logger.NewWithWriter(env, a.stderr)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	repo := repository.NewMemoryRepository()
	resolver, err := resolution.NewResolver(repo, cfg.Resolver)
	if err != nil {
		return err
	}
	m := metrics.New()
	a.parser = services.NewParseService(cfg.Parse.Workers, m, a.log)
	a.registry = services.NewRegistryService(repo, resolver, m, a.log)
	return nil
}

func (a *cli) print(v interface{}) error {
	enc := json.NewEncoder(a.stdout)
	if a.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func readInput(path string) (string, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return filepath.Base(path), data, nil
}

func isWorkbook(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}
