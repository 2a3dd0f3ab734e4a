package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"svw.info/lattice/internal/automaton"
	"svw.info/lattice/internal/config"
	"svw.info/lattice/internal/generator"
	"svw.info/lattice/internal/hint"
	"svw.info/lattice/internal/infrastructure/storage"
	"svw.info/lattice/internal/logging"
	"svw.info/lattice/internal/solver"
	"svw.info/lattice/internal/usecase"
	"svw.info/lattice/internal/validator"
)

var (
	// Global flags
	configPath string
	verbose    bool
	debug      bool

	cfg    *config.Config
	logger *zap.Logger
)

// exitError carries a process exit code other than 1.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

var rootCmd = &cobra.Command{
	Use:   "lattice",
	Short: "lattice - six-indicator access challenge",
	Long: `lattice is a terminal puzzle: press six buttons until six indicators
match the target, then leave an email address for an event invite.

Run without arguments to play locally; use "serve" to open the puzzle
to anyone with an SSH client.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("debug") {
			cfg.Debug = debug
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		// the local terminal UI owns stdout/stderr
		if !cmd.HasParent() || cmd.Name() == "play" {
			logger, err = logging.NewQuiet(cfg.Logging, verbose)
		} else {
			logger, err = logging.New(cfg.Logging, verbose)
		}
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runPlay,
}

// buttonTable is the wiring every command plays on.
var buttonTable = automaton.Default

// newService checks the button table and wires the use cases shared by
// every command. A table that fails the check is fatal.
func newService(c *config.Config) (*usecase.Service, automaton.Table, error) {
	table := buttonTable()
	if err := automaton.Validate(table); err != nil {
		return nil, automaton.Table{}, fmt.Errorf("button table: %w", err)
	}
	s := solver.NewBFSSolver(table)
	return usecase.NewService(
		s,
		generator.NewRandomGenerator(table),
		validator.New(),
		hint.NewFirstStep(s),
		storage.NewCSV(c.InviteFile),
	), table, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "lattice.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable the F12 instant solve (or set LATTICE_DEBUG)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(submissionsCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}
