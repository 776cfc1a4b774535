// Package cli is the passgate command tree: the HTTP server plus the operator
// commands for admins and orphaned accounts.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"passgate/internal/platform/config"
	"passgate/internal/platform/logger"
)

var cfgFile string

// Execute builds the root command and runs it.
func Execute(version, commit string) error {
	return newRootCmd(version, commit).Execute()
}

func newRootCmd(version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passgate",
		Short: "Passcode-gated self-registration service",
		Long: `passgate serves the callable registration functions: mobile clients validate
an admin-issued registration passcode and then create an account that waits
for that admin's approval.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./passgate.yaml)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newAdminsCmd())
	cmd.AddCommand(newOrphansCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "passgate %s (%s)\n", version, commit)
		},
	})

	return cmd
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(viper.New(), cfgFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.Log.Level, cfg.Log.Format), nil
}
