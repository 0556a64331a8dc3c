// Package main provides the itensor CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/born-ml/itensor/internal/config"
)

const version = "v0.1.0-dev"

var (
	configPath string
	debug      bool

	// cfg is resolved in PersistentPreRunE before any command runs.
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:           "itensor",
		Short:         "Inspect and exercise labeled tensor files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.NewViper(configPath)
			if err != nil {
				return err
			}
			if err := v.BindPFlag(config.KeyDebug, cmd.Root().PersistentFlags().Lookup("debug")); err != nil {
				return err
			}
			cfg, err = config.FromOptions(v)
			return err
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "itensor %s\n", version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (ITENSOR_* variables override it)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log storage events to stderr")
	rootCmd.AddCommand(versionCmd, inspectCmd, demoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
