// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mangadventure/internal/config"
	"mangadventure/internal/httputil"
	"mangadventure/internal/provider"
	"mangadventure/internal/provider/mangadventure"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagSite     string
	flagDownload string
	flagRate     float64
	flagJSON     bool
	flagDebug    bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "mangadventure [query]",
	Short: "Read manga from MangAdventure sites in the terminal",
	Long: `mangadventure browses and downloads series from sites running MangAdventure.
Search for a series, pick a chapter with fzf and its pages are saved locally.`,
	Args:              cobra.ArbitraryArgs,
	PersistentPreRunE: loadConfig,
	RunE:              readRun,
	SilenceUsage:      true,
}

// Execute runs the root command. An interrupt cancels in-flight requests.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagSite, "site", "s", "", "Site to use (see 'mangadventure sites')")
	rootCmd.PersistentFlags().StringVarP(&flagDownload, "download", "d", "", "Download directory (default from config)")
	rootCmd.PersistentFlags().Float64Var(&flagRate, "rate", 0, "Maximum requests per second")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Output records as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(homeCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(seriesCmd)
	rootCmd.AddCommand(chaptersCmd)
	rootCmd.AddCommand(pagesCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(updatesCmd)
	rootCmd.AddCommand(sitesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagSite != "" {
		cfg.Site = flagSite
	}
	if flagRate > 0 {
		cfg.RequestsPerSecond = flagRate
	}
	if flagDownload != "" {
		cfg.DownloadDir = flagDownload
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.SetOutput(os.Stderr)
	if cfg.Debug {
		log.SetPrefix("[mangadventure] ")
	} else {
		log.SetFlags(0)
	}

	return nil
}

// debugf logs a message if debug mode is enabled.
func debugf(format string, args ...any) {
	if cfg != nil && cfg.Debug {
		log.Printf(format, args...)
	}
}

// openRegistry builds a provider for every configured site.
func openRegistry() (*provider.Registry, error) {
	opts := []mangadventure.Option{
		mangadventure.WithClient(httputil.NewClient(cfg.Timeout())),
		mangadventure.WithRequestsPerSecond(cfg.RequestsPerSecond),
	}
	if cfg.Debug {
		opts = append(opts, mangadventure.WithLogger(log.Default()))
	}
	return provider.NewRegistryFromSites(cfg.Sites(), opts...)
}

// openProvider returns the provider of the selected site. The caller closes
// the registry.
func openProvider() (*provider.Registry, provider.Provider, error) {
	registry, err := openRegistry()
	if err != nil {
		return nil, nil, err
	}
	p, err := registry.Get(cfg.Site)
	if err != nil {
		registry.Close()
		return nil, nil, err
	}
	debugf("using site %s (%s)", p.Info().Name, p.Info().BaseURL)
	return registry, p, nil
}
