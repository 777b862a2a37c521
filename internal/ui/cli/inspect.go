package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInspectCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file> <offset|line:column>",
		Short: "Print the type of the variable at a position",
		Long:  "Resolves the variable binding at a character offset or a 1-based line:column and prints the status text once.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[1])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			rt, err := startRuntime(ctx, opts, false)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			offset := pos.offset
			if !pos.isOffset {
				id, err := rt.app.OpenFile(args[0])
				if err != nil {
					return err
				}
				if offset, err = rt.app.OffsetOf(id, pos.lineCol); err != nil {
					return err
				}
			}

			result, err := rt.app.Inspect(ctx, args[0], offset)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), result)
			return err
		},
	}
}
