package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kydenul/handodds"
)

var rootCmd = &cobra.Command{
	Use:           "handodds",
	Short:         "Opening-hand probabilities for trading card games",
	Long:          "handodds computes binomial coefficients, the bad-hand rate and the expected number of mulligans for a deck.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (defaults to handodds.yaml in the usual locations)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log engine diagnostics to stderr")

	rootCmd.AddCommand(combinationCmd)
	rootCmd.AddCommand(badHandCmd)
	rootCmd.AddCommand(mulliganCmd)
}

// newCalculator loads configuration (--config flag first, then the default
// search paths and HANDODDS_* environment) and builds a calculator from it.
func newCalculator(cmd *cobra.Command) (*handodds.Calculator, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := handodds.Logger(handodds.NewSilentLogger())
	if verbose {
		logger = handodds.NewDefaultLogger(os.Stderr, true)
	}

	cm := handodds.NewConfigManager(logger)
	var (
		cfg *handodds.Config
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = cm.LoadConfigFile(path)
	} else {
		cfg, err = cm.LoadConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	engine, err := handodds.NewEngineFromConfig(cfg, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	return handodds.NewCalculator(engine), nil
}

// countFlag reads a flag as text so that non-integers surface as InvalidInput
func countFlag(cmd *cobra.Command, flag, field string) (int, error) {
	raw, _ := cmd.Flags().GetString(flag)
	return handodds.ParseCount(field, raw)
}
