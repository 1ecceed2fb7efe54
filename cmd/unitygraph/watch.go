package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wouteroostervld/unitygraph/pkg/filter"
	"github.com/wouteroostervld/unitygraph/pkg/watcher"
	"github.com/wouteroostervld/unitygraph/pkg/worker"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [project-dir]",
		Short: "Re-analyze the project whenever its assets change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(dirArg(args))
			if err != nil {
				return err
			}
			s, err := p.openStore()
			if err != nil {
				return err
			}
			if s != nil {
				defer s.Close()
			}

			w := p.newWorker(s, false)
			root := filepath.Join(p.dir, filepath.FromSlash(p.assetRoot))

			tw, err := watcher.New(&watcher.Config{
				Root:          p.dir,
				Rules:         filter.New(p.cfg.Include, p.cfg.Exclude, p.cfg.Blacklist, p.cfg.Whitelist),
				DebounceDelay: p.cfg.Watch.Debounce,
				OnChange: func(paths []string) {
					slog.Debug("Change detected", "files", len(paths), "first", paths[0])
					w.Notify()
				},
			})
			if err != nil {
				return err
			}
			defer tw.Close()

			if err := tw.WatchTree(root); err != nil {
				return fmt.Errorf("failed to watch %s: %w", root, err)
			}
			slog.Info("Watching project", "project", p.id, "root", root, "directories", len(tw.Watched()))

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			errCh := make(chan error, 1)
			go func() {
				errCh <- tw.Start(ctx)
			}()

			err = w.Start(ctx, func(out *worker.Outcome, err error) {
				if err != nil {
					slog.Error("Analysis failed", "project", p.id, "error", err)
					return
				}
				if out.Cached {
					return
				}
				sum := out.Payload.Summary
				slog.Info("Project updated",
					"assets", sum.TotalAssets,
					"dependencies", sum.TotalDependencies,
					"depth", sum.DependencyDepth,
					"skipped", out.Payload.Report.SkippedCount(),
				)
			})
			cancel()
			if werr := <-errCh; werr != nil && !errors.Is(werr, context.Canceled) {
				return werr
			}
			if errors.Is(err, context.Canceled) {
				slog.Info("Stopped watching", "project", p.id)
				return nil
			}
			return err
		},
	}
}
