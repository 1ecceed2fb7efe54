package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// projectStatus is one row of the status command
type projectStatus struct {
	ProjectID   string `json:"projectId" yaml:"projectId"`
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
	AnalyzedAt  string `json:"analyzedAt" yaml:"analyzedAt"`
	Assets      int64  `json:"assets" yaml:"assets"`
	Edges       int64  `json:"edges" yaml:"edges"`
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [project-dir]",
		Short: "Check the analysis store and list stored projects",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.noCache {
				return fmt.Errorf("status reads the analysis store and cannot run with --no-cache")
			}
			p, err := loadProject(dirArg(args))
			if err != nil {
				return err
			}
			s, err := p.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			if err := s.HealthCheck(ctx); err != nil {
				return fmt.Errorf("store health check failed: %w", err)
			}

			projects, err := s.ListProjects(ctx)
			if err != nil {
				return err
			}

			rows := make([]projectStatus, 0, len(projects))
			for _, info := range projects {
				row := projectStatus{
					ProjectID:   info.ProjectID,
					Fingerprint: info.Fingerprint,
					AnalyzedAt:  info.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				}
				if row.Assets, err = s.CountAssets(ctx, info.ProjectID); err != nil {
					return err
				}
				if row.Edges, err = s.CountEdges(ctx, info.ProjectID); err != nil {
					return err
				}
				rows = append(rows, row)
			}

			if opts.format != formatText {
				return encode(cmd.OutOrStdout(), opts.format, rows)
			}

			w := cmd.OutOrStdout()
			location := s.Path()
			if location == "" {
				location = "(dsn)"
			}
			headingColor.Fprintf(w, "Store %s %s\n", s.Driver(), location)
			fmt.Fprintf(w, "  profile %s\n", p.cfg.ProfileName)
			if len(rows) == 0 {
				fmt.Fprintln(w, "  no analyzed projects")
				return nil
			}
			for _, r := range rows {
				marker := " "
				if r.ProjectID == p.id {
					marker = "*"
				}
				fmt.Fprintf(w, "%s %-24s %6d assets %6d edges  %s  %s\n",
					marker, r.ProjectID, r.Assets, r.Edges, r.AnalyzedAt, faintColor.Sprint(r.Fingerprint))
			}
			return nil
		},
	}
}
