package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/notify/config"
)

// newRootCmd builds the command. With no flags it runs the plain
// demonstration using config.DefaultConfig.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var configFile string
	defaults := config.DefaultConfig()

	root := &cobra.Command{
		Use:           "notify",
		Short:         "Broadcast publisher events to observers held by non-owning references",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if configFile != "" {
				loaded, err := config.Load(configFile)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				cfg = *loaded
			}
			if err := applyFlags(cmd, &cfg); err != nil {
				return err
			}
			return run(cmd.Context(), &cfg, stdout, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.Flags()
	flags.StringVar(&configFile, "config", "", "Path to a JSON, YAML or TOML config file")
	flags.Int("rounds", defaults.Rounds, "Number of DoWork calls")
	flags.Int("release-after", defaults.ReleaseAfter, "Release the stateless observer after this round (0 = never)")
	flags.Bool("weak", defaults.Weak, "Hold observers by weak pointer instead of slot handles")
	flags.String("log-level", defaults.LogLevel, "Log level: debug|info|warn|error")
	flags.Bool("metrics", defaults.Metrics, "Print registry metrics in Prometheus text format on exit")

	return root
}

// applyFlags overrides cfg with flags set explicitly on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("rounds") {
		n, err := flags.GetInt("rounds")
		if err != nil {
			return err
		}
		cfg.Rounds = n
	}
	if flags.Changed("release-after") {
		n, err := flags.GetInt("release-after")
		if err != nil {
			return err
		}
		cfg.ReleaseAfter = n
	}
	if flags.Changed("weak") {
		v, err := flags.GetBool("weak")
		if err != nil {
			return err
		}
		cfg.Weak = v
	}
	if flags.Changed("log-level") {
		v, err := flags.GetString("log-level")
		if err != nil {
			return err
		}
		cfg.LogLevel = v
	}
	if flags.Changed("metrics") {
		v, err := flags.GetBool("metrics")
		if err != nil {
			return err
		}
		cfg.Metrics = v
	}

	if cfg.Rounds < 0 {
		return fmt.Errorf("rounds must be non-negative, got %d", cfg.Rounds)
	}
	if cfg.ReleaseAfter < 0 {
		return fmt.Errorf("release-after must be non-negative, got %d", cfg.ReleaseAfter)
	}
	return nil
}
