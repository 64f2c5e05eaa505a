package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"builder-platform/internal/domaintheme"
	"builder-platform/internal/theme"
)

func newThemeCommand() *cobra.Command {
	var (
		asJSON     bool
		forceColor bool
		forceMono  bool
	)

	cmd := &cobra.Command{
		Use:   "theme <domain>",
		Short: "Resolve one domain theme",
		Long: `Resolve the theme of one domain and show the accent as it would be
written to the --accent-domain property and painted on this terminal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := theme.ParseDomain(args[0])
			if err != nil {
				return err
			}

			props := domaintheme.NewProperties()
			snap := domaintheme.New(props, domaintheme.WithDomain(d)).Current()

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					domaintheme.Snapshot
					Properties map[string]string `json:"properties"`
				}{snap, props.Snapshot()})
			}

			accent, err := theme.ResolveTerminalAccent(d, theme.RenderOptions{
				Term:       os.Getenv("TERM"),
				ForceColor: forceColor,
				ForceMono:  forceMono,
			})
			if err != nil {
				return err
			}
			terminal := "(monochrome)"
			if accent.Color {
				terminal = accent.Hex
			}

			fmt.Fprintf(out, "domain:      %s\n", snap.Domain.Slug())
			fmt.Fprintf(out, "name:        %s\n", snap.Theme.Name)
			fmt.Fprintf(out, "description: %s\n", snap.Theme.Description)
			fmt.Fprintf(out, "accent:      %s\n", snap.Theme.Accent)
			fmt.Fprintf(out, "terminal:    %s\n", terminal)
			fmt.Fprintf(out, "css:         %s\n", props.CSS())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print machine-readable JSON")
	cmd.Flags().BoolVar(&forceColor, "force-color", false, "resolve the accent even when TERM lacks colour")
	cmd.Flags().BoolVar(&forceMono, "force-mono", false, "never resolve a terminal colour")
	return cmd
}
