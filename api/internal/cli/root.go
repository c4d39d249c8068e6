package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"study-helper/api/internal/config"
	"study-helper/api/internal/wire"
)

type ctxKey string

const appKey ctxKey = "app"

// Execute builds the root command and runs it.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command and wires dependencies in
// PersistentPreRunE so every subcommand sees the same App.
func NewRootCmd() *cobra.Command {
	var (
		cfgPath string
		engine  string
	)

	cmd := &cobra.Command{
		Use:           "study-helper",
		Short:         "Explain any topic simply, powered by Gemini",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			if cfgPath != "" {
				v.SetConfigFile(cfgPath)
			}
			if engine != "" {
				v.Set("engine", engine)
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			app, err := wire.BuildApp(cfg)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, app))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app, ok := cmd.Context().Value(appKey).(*wire.App); ok {
				app.Log.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (yaml|toml|json)")
	cmd.PersistentFlags().StringVar(&engine, "engine", "", "engine to use: gemini (REST) or genai (SDK)")

	cmd.AddCommand(newExplainCmd())
	cmd.AddCommand(newTUICmd())

	cmd.Run = func(cmd *cobra.Command, args []string) { _ = cmd.Help() }

	return cmd
}

func getApp(cmd *cobra.Command) *wire.App {
	v := cmd.Context().Value(appKey)
	if v == nil {
		fmt.Fprintln(os.Stderr, "internal error: app not initialized")
		os.Exit(1)
	}
	return v.(*wire.App)
}
