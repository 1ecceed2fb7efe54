package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/wouteroostervld/unitygraph/pkg/analyzer"
	"github.com/wouteroostervld/unitygraph/pkg/config"
	"github.com/wouteroostervld/unitygraph/pkg/filter"
	"github.com/wouteroostervld/unitygraph/pkg/logging"
	"github.com/wouteroostervld/unitygraph/pkg/source"
	"github.com/wouteroostervld/unitygraph/pkg/store"
	"github.com/wouteroostervld/unitygraph/pkg/worker"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configPath string
	profile    string
	logLevel   string
	debug      bool
	format     string
	projectID  string
	noColor    bool
	noCache    bool
}

var opts globalOptions

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unitygraph",
		Short: "Dependency and structure analysis for Unity projects",
		Long: `unitygraph reads a Unity project tree, links assets through the guids in
their .meta files and reports scripts, scenes, prefabs, materials and the
dependency graph between them.

Examples:
  unitygraph analyze ./MyGame
  unitygraph summary --format json ./MyGame
  unitygraph refs 4f2a9c0d1e ./MyGame
  unitygraph watch ./MyGame`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := opts.logLevel
			if opts.debug {
				level = "debug"
			}
			if opts.noColor {
				color.NoColor = true
			}
			colorize := !opts.noColor && isatty.IsTerminal(os.Stderr.Fd())
			if _, err := logging.Setup(os.Stderr, level, colorize); err != nil {
				return err
			}
			switch opts.format {
			case formatText, formatJSON, formatYAML:
				return nil
			default:
				return fmt.Errorf("unknown format %q (want text, json or yaml)", opts.format)
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Global config file (default ~/.unitygraph/config.yaml)")
	flags.StringVar(&opts.profile, "profile", "", "Config profile to use instead of active_profile")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flags.BoolVar(&opts.debug, "debug", false, "Shorthand for --log-level debug")
	flags.StringVarP(&opts.format, "format", "f", formatText, "Output format: text, json, yaml")
	flags.StringVar(&opts.projectID, "project-id", "", "Project id (default: project directory name)")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&opts.noCache, "no-cache", false, "Skip the analysis store")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "unitygraph %s\n", Version)
		},
	}
}

// project is the resolved runtime state of one command invocation
type project struct {
	dir       string
	id        string
	assetRoot string
	cfg       *config.MergedConfig
}

// loadProject resolves dir and the configuration that applies to it
func loadProject(dir string) (*project, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := config.NormalizePath(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid project directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("project directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project directory %s is not a directory", abs)
	}

	global, err := loadGlobal()
	if err != nil {
		return nil, err
	}

	loader := config.NewDefaultLoader()
	merged, err := loader.ForProject(abs, global)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if merged.LocalConfigPath != "" {
		slog.Debug("Using local config", "path", merged.LocalConfigPath)
	}

	assetRoot, err := config.AssetRootPath(abs, merged.AssetRoot)
	if err != nil {
		return nil, err
	}

	id := opts.projectID
	if id == "" {
		id = filepath.Base(abs)
	}

	return &project{dir: abs, id: id, assetRoot: assetRoot, cfg: merged}, nil
}

func loadGlobal() (*config.GlobalConfig, error) {
	loader := config.NewDefaultLoader()

	var (
		global *config.GlobalConfig
		err    error
	)
	if opts.configPath != "" {
		global, err = loader.LoadGlobalFromPath(opts.configPath)
	} else {
		global, err = loader.LoadGlobal()
	}
	if err != nil {
		return nil, err
	}

	if opts.profile != "" {
		if _, ok := global.Profiles[opts.profile]; !ok {
			return nil, fmt.Errorf("profile %s not found in config", opts.profile)
		}
		global.ActiveProfile = opts.profile
	}
	return global, nil
}

// openStore opens the configured store, or returns nil with --no-cache
func (p *project) openStore() (*store.Store, error) {
	if opts.noCache {
		return nil, nil
	}
	s, err := store.Open(store.Config{
		Driver: p.cfg.Store.Driver,
		Path:   p.cfg.Store.Path,
		DSN:    p.cfg.Store.DSN,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return s, nil
}

// newWorker wires collection, analysis and the optional cache for p
func (p *project) newWorker(cache *store.Store, force bool) *worker.AnalysisWorker {
	rules := filter.New(p.cfg.Include, p.cfg.Exclude, p.cfg.Blacklist, p.cfg.Whitelist)

	cfg := &worker.Config{
		ProjectID:  p.id,
		FS:         os.DirFS(p.dir),
		AssetRoot:  p.assetRoot,
		Collector:  source.NewCollector(rules, p.cfg.MaxFileSize),
		Analyzer:   analyzer.New(&analyzer.Config{Workers: p.cfg.Workers, Logger: slog.Default()}),
		MaxRetries: p.cfg.Watch.MaxRetries,
		Force:      force,
	}
	// A nil *store.Store must not become a non-nil interface
	if cache != nil {
		cfg.Cache = cache
	}
	return worker.NewAnalysisWorker(cfg)
}

// runAnalysis runs the pipeline once for dir
func runAnalysis(cmd *cobra.Command, dir string, force bool) (*project, *worker.Outcome, error) {
	p, err := loadProject(dir)
	if err != nil {
		return nil, nil, err
	}

	s, err := p.openStore()
	if err != nil {
		return nil, nil, err
	}
	if s != nil {
		defer s.Close()
	}

	out, err := p.newWorker(s, force).RunWithRetry(cmd.Context())
	if err != nil {
		return nil, nil, fmt.Errorf("analysis failed: %w", err)
	}
	return p, out, nil
}

func dirArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
