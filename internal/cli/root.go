// Package cli wires the builder command tree.
package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewRootCommand returns the builder command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "builder",
		Short:         "Domain-themed home page over SSH and HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newTokensCommand(), newThemeCommand())
	return root
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
