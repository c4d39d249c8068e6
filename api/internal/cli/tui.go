package cli

import (
	"github.com/spf13/cobra"

	"study-helper/api/internal/tui"
)

func newTUICmd() *cobra.Command {
	var style string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Interactive explainer in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			x, err := app.Explainer("")
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), x, app.Log, style)
		},
	}
	cmd.Flags().StringVar(&style, "style", "", "glamour style for results")
	return cmd
}
