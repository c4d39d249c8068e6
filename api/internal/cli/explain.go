package cli

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"study-helper/api/internal/markup"
	"study-helper/api/internal/render"
)

var clipboardWrite = clipboard.WriteAll

func newExplainCmd() *cobra.Command {
	var (
		copyOut bool
		raw     bool
		width   int
		style   string
	)
	cmd := &cobra.Command{
		Use:   "explain <topic...>",
		Short: "Explain a topic and print the formatted answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			x, err := app.Explainer("")
			if err != nil {
				return err
			}

			topic := strings.TrimSpace(strings.Join(args, " "))
			if topic == "" {
				return fmt.Errorf("topic must not be blank")
			}
			out := x.Explain(cmd.Context(), topic)
			if out.Failure != nil {
				return out.Failure
			}

			w := cmd.OutOrStdout()
			if raw {
				fmt.Fprintln(w, out.Text)
			} else {
				if width <= 0 {
					width = app.Cfg.RenderWidth
				}
				blocks := markup.FormatOrLiteral(out.Text)
				s, err := render.Terminal(blocks, width, style)
				if err != nil {
					app.Log.Warn("terminal render failed", "error", err)
					s = render.Plain(blocks) + "\n"
				}
				fmt.Fprint(w, s)
			}

			if copyOut {
				if err := clipboardWrite(out.Text); err != nil {
					app.Log.Warn("clipboard write failed", "error", err)
				} else {
					fmt.Fprintln(cmd.ErrOrStderr(), "copied to clipboard")
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&copyOut, "copy", false, "copy the raw answer to the clipboard")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the model text without formatting")
	cmd.Flags().IntVar(&width, "width", 0, "wrap width for formatted output (default render.width)")
	cmd.Flags().StringVar(&style, "style", "", "glamour style: dark, light, dracula, notty, ...")
	return cmd
}
