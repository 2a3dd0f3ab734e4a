package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"svw.info/lattice/internal/domain"
)

var solveTarget string

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Print the shortest press sequence from all OFF to a target",
	Long: `Compute the shortest press sequence from all OFF.

The target accepts numbers or color names:
  lattice solve --target 5,4,1,5,4,1
  lattice solve --target WHITE,PURPLE,GREEN,WHITE,PURPLE,GREEN`,
	Args: cobra.NoArgs,
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVarP(&solveTarget, "target", "t", "", "Comma-separated target (required)")
	_ = solveCmd.MarkFlagRequired("target")
}

func formatState(v domain.Vector) string {
	return fmt.Sprintf("%s   (%s)", v, v.Ordinals())
}

func joinButtons(seq []domain.ButtonID, label bool) string {
	parts := make([]string, len(seq))
	for i, b := range seq {
		if label {
			parts[i] = b.Label()
		} else {
			parts[i] = strconv.Itoa(int(b))
		}
	}
	return strings.Join(parts, ", ")
}

func runSolve(cmd *cobra.Command, args []string) error {
	target, err := domain.ParseVector(solveTarget)
	if err != nil {
		return &exitError{code: 2, err: fmt.Errorf("input error: %w", err)}
	}

	engine, _, err := newService(cfg)
	if err != nil {
		return err
	}
	path, st, err := engine.Solve(cmd.Context(), domain.AllOff, target)
	if err != nil {
		return fmt.Errorf("no solution found: %w", err)
	}
	logger.Debug("Solved", zap.Int("nodes", st.Nodes), zap.Duration("duration", st.Duration))

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Start state :", formatState(domain.AllOff))
	fmt.Fprintln(out, "Target state:", formatState(target))
	fmt.Fprintf(out, "Moves       : %d\n", len(path))
	fmt.Fprintln(out, "Press order : "+joinButtons(path, true))
	fmt.Fprintln(out, "Zero-index  : "+joinButtons(path, false))
	return nil
}
