package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xiaot623/chatbot/internal/config"
	"github.com/xiaot623/chatbot/internal/observability"
)

var (
	verbose    bool
	configPath string
	version    string = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chatbot",
	Short: "Chat session backend with a rule-based assistant",
	Long: `A chat backend that stores sessions and messages and answers every
user message with a rule-based reply.

Quick Start:
  chatbot serve                 # Start the HTTP and websocket API
  chatbot diagnostics           # Check the configured store
  chatbot chat                  # Talk to a running server`,
	Version:      version,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig reads the configuration and applies the log level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	observability.SetLevel(level)
	return cfg, nil
}
