package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AnatoleLucet/sigstore"
	"github.com/AnatoleLucet/sigstore/gantt"
)

var logger *zap.Logger

var rootCmd = &cobra.Command{
	Use:   "ganttctl",
	Short: "Inspect and drive a headless Gantt chart",
	Long: `ganttctl loads tasks from a YAML file into a reactive Gantt store.

Derived state (normalized tasks, timeline range, scale grid, bar geometry,
selection) is recomputed by the store's route table on every change.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if viper.GetBool("verbose") {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}

		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default .ganttctl.yaml)")
	flags.BoolP("verbose", "v", false, "debug logging")
	flags.String("unit", "", "scale unit: day, week, month (overrides the task file)")
	flags.Int("step", 0, "units per scale cell (overrides the task file)")
	flags.Int("cell-width", 0, "scale cell width in pixels (overrides the task file)")
	flags.String("policy", "immediate", "store scheduling policy: immediate, deferred")
	flags.Duration("delay", time.Millisecond, "settle delay of the deferred policy")
	flags.Int("max-iterations", sigstore.DefaultMaxIterations, "rule executions allowed per flush, 0 for no limit")

	for _, name := range []string{"verbose", "unit", "step", "cell-width", "policy", "delay", "max-iterations"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".ganttctl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("GANTTCTL")
	viper.AutomaticEnv()

	// no config file is fine, flags and defaults apply
	_ = viper.ReadInConfig()
}

func parsePolicy(s string) (sigstore.Policy, error) {
	switch s {
	case "", "immediate":
		return sigstore.Immediate, nil
	case "deferred":
		return sigstore.Deferred, nil
	default:
		return 0, fmt.Errorf("unknown policy %q", s)
	}
}

// storeOptions builds the gantt options from the resolved configuration.
func storeOptions() ([]gantt.Option, error) {
	policy, err := parsePolicy(viper.GetString("policy"))
	if err != nil {
		return nil, err
	}

	return []gantt.Option{
		gantt.WithLogger(logger),
		gantt.WithStoreOptions(
			sigstore.WithPolicy(policy),
			sigstore.WithDelay(viper.GetDuration("delay")),
			sigstore.WithMaxIterations(viper.GetInt("max-iterations")),
		),
	}, nil
}

// applyOverrides lets flags and config win over the task file.
func applyOverrides(cfg *gantt.Config) error {
	if u := viper.GetString("unit"); u != "" {
		unit, err := gantt.ParseUnit(u)
		if err != nil {
			return err
		}
		cfg.Unit = unit
	}
	if n := viper.GetInt("step"); n > 0 {
		cfg.Step = n
	}
	if n := viper.GetInt("cell-width"); n > 0 {
		cfg.CellWidth = n
	}
	return nil
}
