package cli

import (
	"fmt"
	"io"
	"os"
	"typeinspector/internal/core/errors"

	"github.com/spf13/cobra"
)

const versionString = "1.0.0"

type rootOptions struct {
	configPath string
	verbose    bool

	closeLogs func()
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return exitCode(err)
	}
	return 0
}

// exitCode maps domain error codes to process exit statuses. Errors from
// outside the domain, such as cobra usage errors, exit with 1.
func exitCode(err error) int {
	switch errors.CodeOf(err) {
	case errors.CodeValidationError:
		return 2
	case errors.CodeNotFound:
		return 3
	case errors.CodeNotSupported:
		return 4
	}
	return 1
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{closeLogs: func() {}}

	root := &cobra.Command{
		Use:           "typeinspector",
		Short:         "Show the inferred type of the Python variable under the caret",
		Long:          "typeinspector resolves the type of the variable binding under a caret position and publishes it to a status bar.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.closeLogs = configureLogging(cmd.ErrOrStderr(), cmd.Name() == "ui", opts.verbose)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.closeLogs()
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (default: ./data/config/typeinspector.toml, then ./typeinspector.toml)")
	root.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "enable debug logging")

	root.AddCommand(newInspectCommand(opts))
	root.AddCommand(newUICommand(opts))
	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) error {
	_, err := fmt.Fprintf(w, "typeinspector v%s\n", versionString)
	return err
}
