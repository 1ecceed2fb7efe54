package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wouteroostervld/unitygraph/pkg/store"
)

// reference is one dependent of the queried guid
type reference struct {
	Source string `json:"source" yaml:"source"`
	Path   string `json:"path" yaml:"path"`
	Type   string `json:"type" yaml:"type"`
}

func newRefsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refs <guid> [project-dir]",
		Short: "List the assets that reference a guid",
		Long: `Refreshes the stored analysis if the project changed, then lists every
asset with a dependency on the given guid.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.noCache {
				return fmt.Errorf("refs reads the analysis store and cannot run with --no-cache")
			}
			guid := args[0]

			p, err := loadProject(dirArg(args[1:]))
			if err != nil {
				return err
			}
			s, err := p.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			if _, err := p.newWorker(s, false).RunWithRetry(ctx); err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			edges, err := s.Dependents(ctx, p.id, guid)
			if err != nil {
				return err
			}

			refs := make([]reference, 0, len(edges))
			for _, e := range edges {
				ref := reference{Source: e.Source, Type: string(e.Type)}
				asset, err := s.LookupAsset(ctx, p.id, e.Source)
				switch {
				case err == nil:
					ref.Path = asset.Path
				case !errors.Is(err, store.ErrNotFound):
					return err
				}
				refs = append(refs, ref)
			}

			if opts.format != formatText {
				return encode(cmd.OutOrStdout(), opts.format, refs)
			}

			w := cmd.OutOrStdout()
			target := guid
			if asset, err := s.LookupAsset(ctx, p.id, guid); err == nil {
				target = fmt.Sprintf("%s (%s)", asset.Path, guid)
			}
			headingColor.Fprintf(w, "%d references to %s\n", len(refs), target)
			for _, r := range refs {
				fmt.Fprintf(w, "  %s %s %s\n", faintColor.Sprintf("%-18s", r.Type), r.Path, faintColor.Sprint(r.Source))
			}
			return nil
		},
	}
}
