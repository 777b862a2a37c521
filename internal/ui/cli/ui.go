package cli

import (
	"log/slog"
	"typeinspector/internal/ui/tui"

	"github.com/spf13/cobra"
)

func newUICommand(opts *rootOptions) *cobra.Command {
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "ui <file>",
		Short: "Open a file in the terminal editor with the type status bar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := startRuntime(ctx, opts, true)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			if _, err := rt.app.OpenFile(args[0]); err != nil {
				return err
			}
			if !noWatch && rt.app.Config.Watch.IsEnabled() {
				if err := rt.app.StartWatcher(); err != nil {
					slog.Warn("file watcher unavailable, buffer will not reload", "error", err)
				}
			}
			return tui.Run(rt.app, args[0])
		},
	}
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload the file when it changes on disk")
	return cmd
}
