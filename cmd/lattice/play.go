package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"svw.info/lattice/internal/generator"
	"svw.info/lattice/internal/session"
	"svw.info/lattice/internal/tui"
	"svw.info/lattice/web"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the puzzle in this terminal",
	Args:  cobra.NoArgs,
	RunE:  runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	engine, table, err := newService(cfg)
	if err != nil {
		return err
	}
	ctl, err := session.New(ctx, session.Deps{
		Engine: engine,
		Table:  table,
		Seeder: generator.ProcessSeeder{},
		Logger: logger,
	}, session.Options{Debug: cfg.Debug, SplashDuration: cfg.GetSplashDuration()})
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	model := tui.New(ctl, tui.Options{Splash: web.Splash(), Context: ctx})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal UI: %w", err)
	}
	if ctl.IsSubmitted() {
		fmt.Fprintf(cmd.OutOrStdout(), "Invite request recorded in %s\n", cfg.InviteFile)
	}
	return nil
}
