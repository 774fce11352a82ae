package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archview/internal/config"
	"github.com/matzehuels/archview/pkg/buildinfo"
	"github.com/matzehuels/archview/pkg/calm"
	"github.com/matzehuels/archview/pkg/errors"
	"github.com/matzehuels/archview/pkg/pattern"
	"github.com/matzehuels/archview/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "archview"

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

	// configPath is set by --config; empty means the default location.
	configPath string
	verbose    bool
	out        io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output (documents, tables, JSON). Status
// lines and logs are unaffected.
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Archview lays out CALM architecture documents",
		Long:         `Archview turns CALM architecture documents and patterns into positioned, routed graphs, lists their decision points and renders filtered views of them.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(levelFor(c.verbose))
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/archview/config.toml)")

	root.AddCommand(c.parseCommand())
	root.AddCommand(c.decisionsCommand())
	root.AddCommand(c.filterCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.selectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Runner Factory
// =============================================================================

// loadConfig reads the config file named by --config or the default one.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("config loaded", "backend", cfg.Cache.Backend)
	return cfg, nil
}

// newRunner creates a pipeline runner for CLI use. A cache backend that
// cannot be opened degrades to no caching.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) *pipeline.Runner {
	store, err := cfg.Cache.OpenCache(ctx, noCache)
	if err != nil {
		c.Logger.Warn("cache disabled", "backend", cfg.Cache.Backend, "err", err)
		store = nil
	}
	r := pipeline.NewRunner(store, nil, c.Logger)
	r.GraphTTL = cfg.Cache.GraphTTL()
	return r
}

// =============================================================================
// Input & Output Helpers
// =============================================================================

// readDocument reads a CALM document from path, or stdin for "-".
func readDocument(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read stdin")
		}
		return data, nil
	}
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "document %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return data, nil
}

// loadDocument reads and decodes path, reporting whether it is a pattern.
func loadDocument(path string, forcePattern bool) ([]byte, bool, error) {
	data, err := readDocument(path)
	if err != nil {
		return nil, false, err
	}
	doc, err := calm.Parse(data)
	if err != nil {
		return nil, false, err
	}
	return data, forcePattern || pattern.IsPattern(doc), nil
}

// derivedPath replaces the document extension with suffix: arch.json with
// ".graph.json" becomes arch.graph.json. Stdin maps to "archview"+suffix.
func derivedPath(input, suffix string) string {
	if input == "-" {
		return appName + suffix
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// writeOutput writes data to path, or to w when path is "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "-" {
		_, err := w.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}
