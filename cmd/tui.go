// ABOUTME: TUI command for examctl CLI
// ABOUTME: Launches the interactive exam client

package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/waynezhang680/examctl/internal/logger"
	"github.com/waynezhang680/examctl/internal/tui"
)

// rehydrateTimeout bounds the identity fetch before the TUI starts
const rehydrateTimeout = 3 * time.Second

var tuiRoute string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive exam client",
	Long: `Launch the interactive terminal client. Logs go to debug.log in the config
directory so the screen stays clean.

Example:
  examctl tui --route /exams`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log, closeLog, err := logger.InitFile(cfg.ConfigDir)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer closeLog()

		a := newApp(cfg, log)

		// A failed rehydration keeps the restored token; the first 401 evicts it
		rctx, rcancel := context.WithTimeout(ctx, rehydrateTimeout)
		if err := a.session.Rehydrate(rctx); err != nil {
			log.Warn("Could not fetch identity at startup", "error", err)
		}
		rcancel()

		return tui.Run(ctx, tui.Deps{
			Session:  a.session,
			Exams:    a.exams,
			Router:   a.router,
			APIURL:   cfg.APIURL,
			PageSize: cfg.PageSize,
			Logger:   log,
		}, tuiRoute)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().StringVar(&tuiRoute, "route", "/", "Route to open first")
}
