// ABOUTME: Root command for examctl CLI
// ABOUTME: Handles global flags and configuration

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/waynezhang680/examctl/internal/config"
	"github.com/waynezhang680/examctl/internal/logger"
)

var (
	apiURL     string
	jsonOutput bool
	configDir  string
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "examctl",
	Short: "CLI for the online exam platform",
	Long: `examctl is a command-line client for the online exam platform.

It signs you in, keeps the session between runs and lists, inspects and starts exams.

Environment Variables:
  EXAMCTL_API_URL     Platform API URL (default: http://localhost:8080/api/v1)
  EXAMCTL_TIMEOUT     Request timeout, e.g. 5s or 5000 (default: 5s)
  EXAMCTL_PAGE_SIZE   Exams per page (default: 10)
  EXAMCTL_CONFIG_DIR  Directory for config.yaml and the saved session
  LOG_LEVEL           debug, info, warn, error (default: warn)
  LOG_FORMAT          text, json (default: text)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Platform API URL (overrides EXAMCTL_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (overrides EXAMCTL_CONFIG_DIR)")
}

// loadConfig resolves configuration with the --api-url flag applied last
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = strings.TrimRight(apiURL, "/")
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// runWithApp wires the app for a one-shot command, runs fn and exits with its code
func runWithApp(fn func(ctx context.Context, a *app, w io.Writer) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	a := newApp(cfg, logger.Init())
	exitCode := fn(ctx, a, os.Stdout)
	if exitCode != 0 {
		cancel()
		os.Exit(exitCode)
	}
}
