// Package cmd contains the echoogrow CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/echoogrow/dashboard/config"
	"github.com/echoogrow/dashboard/logging"
)

var (
	cfgFile string
	source  string
	verbose bool
	conf    *config.Root
	logger  *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "echoogrow",
	Short: "Child language-development dashboard",
	Long: `echoogrow turns a log of a child's utterances into a language-development
dashboard: word growth, emotions, topics and a monthly summary.

Example usage:
  echoogrow serve                          # Serve the dashboard on :8501
  echoogrow report --source march.csv      # Print the report to the terminal
  echoogrow report --json --out outputs    # Emit JSON and persist a snapshot
  echoogrow config                         # Show the effective configuration`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config/$CONFIG_ENV/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&source, "source", "s", "", "utterance log (.csv or .xlsx), overrides data.source")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// initConfig loads .env, the config file and the logger.
func initConfig() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading .env: %w", err)
	}

	var err error
	conf, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if source != "" {
		conf.Data.Source = source
	}

	level := conf.Logging.Level
	if verbose {
		level = "debug"
	}
	logger, err = logging.New(level, conf.Logging.Format, os.Stderr)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"source":     conf.Data.Source,
		"classifier": conf.Topics.Classifier,
		"language":   conf.Dashboard.Language,
	}).Debug("configuration loaded")
	return nil
}
