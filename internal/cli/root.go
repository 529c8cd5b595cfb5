// Package cli provides the scrollgrid command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"scrollgrid/internal/config"
	"scrollgrid/internal/logging"
	"scrollgrid/internal/provider"
	"scrollgrid/internal/provider/httpapi"
)

// Version is set by the main package at build time
var Version = "v0.1.0-dev"

// rootOptions holds the persistent flags shared by every command
type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "scrollgrid",
		Short: "Browse large paged collections with windowed fetching",
		Long: `scrollgrid ` + Version + `
Browse a remote collection whose size is unknown up front. Pages are
fetched as rows scroll into view and merged into one ordered list;
changing the search or sort restarts from the first page.

Commands:
  browse  - interactive terminal browser
  serve   - mock paged HTTP server backed by generated data
  dump    - scroll through the whole collection headlessly and print it
  config  - manage the configuration file`,
		SilenceUsage: true,
		Version:      Version,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.FileName, "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides config")

	rootCmd.AddCommand(newBrowseCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newDumpCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))

	return rootCmd
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig loads the config file, falling back to defaults when it is
// missing, and applies flag overrides
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.NewConfigService(o.configPath).Load()
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

// stderrLogger creates the console logger used by non-interactive commands
func (o *rootOptions) stderrLogger(cfg *config.Config, w io.Writer) (zerolog.Logger, error) {
	return logging.NewConsole(w, cfg.Log.Level)
}

// newProvider builds the data provider selected by the config
func newProvider(cfg *config.Config, logger zerolog.Logger) (provider.Provider, error) {
	switch cfg.Provider.Kind {
	case config.ProviderHTTP:
		return httpapi.NewClient(httpapi.Config{
			BaseURL:           cfg.Provider.BaseURL,
			Timeout:           cfg.Timeout(),
			RetryMax:          cfg.Provider.RetryMax,
			RequestsPerSecond: cfg.Provider.RequestsPerSecond,
			Logger:            logger,
		})
	case config.ProviderMemory:
		return newMemoryProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Provider.Kind)
	}
}

func newMemoryProvider(cfg *config.Config) *provider.Memory {
	items := provider.GenerateItems(cfg.Memory.Items, cfg.Memory.Seed)
	return provider.NewMemory(items, provider.WithLatency(cfg.Latency()))
}
