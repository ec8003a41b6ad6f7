// Package cli implements the docchat command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"docchat/internal/app"
	"docchat/internal/config"
	"docchat/internal/logger"
)

var (
	configPath string
	verbose    bool
)

// buildApp assembles the application; tests replace it.
var buildApp = app.Build

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with your PDF and Excel files",
	Long: `docchat extracts text from PDF and XLSX files, indexes it, and answers
questions about it with a chat model, keeping the conversation as context.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (default ./config.yaml, then ~/.config/docchat/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadApp reads configuration and assembles the application.
func loadApp() (*app.App, error) {
	var (
		cfg  *config.AppConfig
		path = configPath
		err  error
	)
	if path == "" {
		cfg, path, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(cfg.Log.Mode, verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	log.Debug("config loaded", "path", path)
	a, err := buildApp(cfg, log)
	if err != nil {
		return nil, err
	}
	return a, nil
}
