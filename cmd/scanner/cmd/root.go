// Package cmd holds the scanner CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"TrendEdge/internal/config"
	"TrendEdge/internal/logger"
)

var (
	cfgFile string
	verbose bool

	cfg *config.Config
)

// errReported marks a failure whose message was already printed.
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   "scanner",
	Short: "Technical-indicator trend and breakout scanner",
	Long: `TrendEdge scanner

Loads price bars per symbol, computes EMA/SMA/RSI/MACD/Bollinger/ADL and
classifies the latest bar with the momentum or breakout rule set.

Commands:
    scan       run one scan and print the ranked table
    serve      expose scans over HTTP
    history    list recorded scan runs
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", defaultCfg, "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
}

// initConfig loads .env, the YAML config and the logger.
func initConfig() error {
	envErr := godotenv.Load()

	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		c.Log.Level = "debug"
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if err := logger.Init(c.Log); err != nil {
		return err
	}
	if envErr != nil {
		log.Debug().Msg(".env file not found, using environment variables")
	}
	cfg = c
	return nil
}
