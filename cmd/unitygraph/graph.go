package main

import (
	"github.com/spf13/cobra"

	"github.com/wouteroostervld/unitygraph/pkg/graph"
)

func newGraphCmd() *cobra.Command {
	var resolved bool

	cmd := &cobra.Command{
		Use:   "graph [project-dir]",
		Short: "Print the asset dependency graph",
		Long: `Prints one node per asset and one edge per dependency record, with each
node's display color. Edges may point at guids with no asset; use
--resolved to drop them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, out, err := runAnalysis(cmd, dirArg(args), false)
			if err != nil {
				return err
			}

			g := graph.FromStructure(out.Payload.Structure)
			if resolved {
				g = g.Resolved()
			}

			if opts.format != formatText {
				return encode(cmd.OutOrStdout(), opts.format, withColors(g))
			}
			writeGraph(cmd.OutOrStdout(), g)
			return nil
		},
	}

	cmd.Flags().BoolVar(&resolved, "resolved", false, "Drop edges whose endpoints are not assets")
	return cmd
}
