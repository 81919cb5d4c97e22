// Package cli implements the gdsutil command-line interface.
//
// The commands are thin adapters over [pipeline.Runner]: they read flags and
// the optional config file, run one pipeline command and print the result.
//
// # Commands
//
//   - print: dump a stream file as JSON
//   - snap: snap hierarchy geometry to a grid
//   - extract srefs: list struct references with their placements
//   - replace srefs: rename struct references through a rename table
//   - def2gds: convert a DEF design and its LEF libraries
//   - hier: draw the struct reference graph
//   - cache: manage the parsed LEF cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// reports every pipeline stage with its duration.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cloudcalvin/gdsutil/pkg/buildinfo"
	"github.com/cloudcalvin/gdsutil/pkg/cache"
	"github.com/cloudcalvin/gdsutil/pkg/observability"
	"github.com/cloudcalvin/gdsutil/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "gdsutil"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "gdsutil edits and converts hierarchical IC layouts",
		Long: `gdsutil reads and writes GDSII stream files. It snaps and renames struct
references across a hierarchy, lists placements, converts LEF/DEF designs
and draws the struct reference graph.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/gdsutil/config.toml)")

	root.AddCommand(c.printCommand())
	root.AddCommand(c.snapCommand())
	root.AddCommand(c.extractCommand())
	root.AddCommand(c.replaceCommand())
	root.AddCommand(c.def2gdsCommand())
	root.AddCommand(c.hierCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup runs before every command: it applies --verbose, loads the config
// file and installs the logging hooks.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
	}
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	observability.SetPipelineHooks(&logHooks{logger: c.Logger})
	observability.SetCacheHooks(&logHooks{logger: c.Logger})
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cache, c.Logger)
	if c.Config.CacheTTL.Duration > 0 {
		r.CacheTTL = c.Config.CacheTTL.Duration
	}
	return r, nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/gdsutil/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/gdsutil/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// =============================================================================
// Walk Flags
// =============================================================================

// walkFlags are the hierarchy selection flags shared by snap, extract and
// replace.
type walkFlags struct {
	depth        int
	levels       int
	patterns     []string
	detectCycles bool
}

func (w *walkFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&w.depth, "depth", defaultDepth, "reference levels to descend below the root structs")
	cmd.Flags().StringArrayVarP(&w.patterns, "pattern", "P", nil, "regexp selecting reference targets (repeatable, default: all)")
	cmd.Flags().BoolVar(&w.detectCycles, "detect-cycles", false, "fail on reference cycles before editing")
	cmd.Flags().IntVar(&w.levels, "levels", 1, "levels to visit, counting the root structs as the first")
	_ = cmd.Flags().MarkHidden("levels")
	cmd.Flags().SetNormalizeFunc(legacyFlagNames)
}

// walk builds the pipeline walk for root, filling unset flags from the
// config file.
func (c *CLI) walk(cmd *cobra.Command, root string, w *walkFlags) pipeline.Walk {
	depth, patterns := w.depth, w.patterns
	switch {
	case cmd.Flags().Changed("depth"):
	case cmd.Flags().Changed("levels"):
		// --levels counts the root structs as level 1.
		depth = w.levels - 1
		if w.levels == 0 {
			depth = 0
		}
	case c.Config.Depth != nil:
		depth = *c.Config.Depth
	}
	if !cmd.Flags().Changed("pattern") && len(c.Config.Patterns) > 0 {
		patterns = c.Config.Patterns
	}
	return pipeline.Walk{Root: root, Depth: depth, Patterns: patterns, DetectCycles: w.detectCycles}
}

// legacyFlagNames accepts the flag spellings of the original gdsu tool.
// --levels is a flag of its own since it counts levels differently.
func legacyFlagNames(f *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "gridsize":
		name = "grid"
	case "patterns":
		name = "pattern"
	}
	return pflag.NormalizedName(name)
}
