// cmd/freelancer-analytics/main.go
package main

import (
	"fmt"
	"os"

	"freelancer-analytics/internal/common/config"
	"freelancer-analytics/internal/common/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds the global flags shared by every subcommand.
type app struct {
	logLevel  string
	logFormat string
	configDir string

	log logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "freelancer-analytics",
		Short: "Answer natural-language questions about freelancer earnings",
		Long: `freelancer-analytics classifies a question about the freelancer earnings
dataset, computes the matching statistics and asks a language model to phrase
the answer. Answers are cached by question text.

Examples:
  freelancer-analytics ask "How much higher are earnings of freelancers paid in crypto?"
  freelancer-analytics classify "Средний доход фрилансеров"
  freelancer-analytics stats`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.log = logger.NewStructured(a.logLevel, a.logFormat)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "console", "log format (console, json)")
	root.PersistentFlags().StringVar(&a.configDir, "config", "", "directory holding config.yaml (default: ./configs)")

	root.AddCommand(a.askCmd(), a.classifyCmd(), a.statsCmd())
	return root
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.configDir == "" {
		return config.Load()
	}
	return config.LoadFrom(viper.New(), a.configDir)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
