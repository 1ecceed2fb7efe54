package main

import (
	"github.com/spf13/cobra"
)

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary [project-dir]",
		Short: "Print project totals, script categories and most referenced assets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, out, err := runAnalysis(cmd, dirArg(args), false)
			if err != nil {
				return err
			}
			if opts.format != formatText {
				return encode(cmd.OutOrStdout(), opts.format, out.Payload.Summary)
			}
			writeSummary(cmd.OutOrStdout(), p.id, out.Payload.Summary)
			return nil
		},
	}
}
