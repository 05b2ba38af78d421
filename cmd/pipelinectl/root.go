package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/app"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/logx"
)

var (
	jsonOutput bool
	jsonLogs   bool
	logFile    string

	rootCtx    context.Context
	rootCancel context.CancelFunc

	theApp *app.App
)

var (
	styleOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	styleWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleErr  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	styleDim  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var rootCmd = &cobra.Command{
	Use:           "pipelinectl",
	Short:         "Operate the asset-version pipeline registry",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		rootCtx, rootCancel = context.WithCancel(context.Background())
		log := logx.New(logx.Options{JSON: jsonLogs, FilePath: logFile, Level: slog.LevelInfo})
		a, err := app.Open(rootCtx, log, nil, nil)
		if err != nil {
			return fmt.Errorf("open registry: %w", err)
		}
		theApp = a
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if theApp == nil {
			return nil
		}
		err := theApp.Close()
		rootCancel()
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "emit structured JSON logs instead of text")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "rotate logs through this file instead of stderr")
}

// Execute runs the root command, printing a styled error and exiting
// non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleErr.Render("error:"), err)
		os.Exit(1)
	}
}
