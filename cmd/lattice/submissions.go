package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var submissionsCmd = &cobra.Command{
	Use:   "submissions",
	Short: "List recorded invite requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, err := newService(cfg)
		if err != nil {
			return err
		}
		subs, err := engine.Submissions(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to read submissions: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(subs) == 0 {
			fmt.Fprintf(out, "No submissions in %s\n", cfg.InviteFile)
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SUBMITTED\tEMAIL")
		for _, s := range subs {
			fmt.Fprintf(tw, "%s\t%s\n", s.SubmittedAt.UTC().Format(time.RFC3339), s.Email)
		}
		return tw.Flush()
	},
}
