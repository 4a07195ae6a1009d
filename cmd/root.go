// File: cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/autoedu/autoedu-cli/internal/config"
	"github.com/autoedu/autoedu-cli/internal/observability"
)

// cfg holds the configuration loaded by the root command's
// PersistentPreRunE for use by subcommands.
var cfg *config.Config

// NewRootCommand builds a fresh command tree. Each invocation gets its
// own viper instance so flags and config from one execution cannot leak
// into the next.
func NewRootCommand() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:          "autoedu",
		Short:        "AutoEdu automates data entry on government education portals.",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, _ := cmd.Flags().GetString("config")

			loaded, err := config.Load(v, cfgFile)
			if err != nil {
				// Fall back to a plain logger so the failure is visible.
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "autoedu"})
				return err
			}
			cfg = loaded

			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Info("Starting AutoEdu", zap.String("version", Version))
			return nil
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "config file (default is ./config.yaml)")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(newRunCommand(v))
	return root
}

// Execute runs the CLI with the given signal-aware context.
func Execute(ctx context.Context) error {
	root := NewRootCommand()
	root.SetContext(ctx)

	if err := root.ExecuteContext(ctx); err != nil {
		if logger := observability.GetLogger(); logger != nil {
			logger.Error("Command execution failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return err
	}
	return nil
}
