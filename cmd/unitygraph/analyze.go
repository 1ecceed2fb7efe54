package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wouteroostervld/unitygraph/pkg/worker"
)

func newAnalyzeCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "analyze [project-dir]",
		Short: "Analyze a Unity project and store the result",
		Long: `Collects the project's asset tree, parses .meta, C#, scene, prefab and
material files and stores the structure, graph summary and skip report.

Unchanged projects are served from the store unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, out, err := runAnalysis(cmd, dirArg(args), force)
			if err != nil {
				return err
			}
			if opts.format != formatText {
				return encode(cmd.OutOrStdout(), opts.format, out.Payload)
			}
			writeAnalysis(cmd, p, out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Re-analyze even if the project is unchanged")
	return cmd
}

func writeAnalysis(cmd *cobra.Command, p *project, out *worker.Outcome) {
	w := cmd.OutOrStdout()
	writeSummary(w, p.id, out.Payload.Summary)

	report := out.Payload.Report
	headingColor.Fprintln(w, "Report")
	fmt.Fprintf(w, "  files read       %d\n", out.Files)
	fmt.Fprintf(w, "  skipped          %d\n", report.SkippedCount())
	fmt.Fprintf(w, "  duplicate guids  %d\n", len(report.DuplicateGUIDs))
	fmt.Fprintf(w, "  orphans          %d\n", len(report.Orphans))
	for _, s := range report.Skipped {
		fmt.Fprintf(w, "    %s\n", faintColor.Sprint(s.Error()))
	}
	for _, d := range report.DuplicateGUIDs {
		warnColor.Fprintf(w, "    guid %s: kept %s, dropped %s\n", d.GUID, d.Kept, d.Dropped)
	}

	status := "analyzed"
	if out.Cached {
		status = "unchanged (cached)"
	}
	fmt.Fprintf(w, "%s in %s, fingerprint %s\n", status, out.Duration.Round(1e6), out.Fingerprint)
}
