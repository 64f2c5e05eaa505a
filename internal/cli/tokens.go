package cli

import (
	"encoding/json"
	"fmt"
	"io"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"builder-platform/internal/theme"
)

func newTokensCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Print the design token table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set := theme.DesignTokens()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(set)
			}
			return renderTokens(out, set, isTerminal(out))
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print machine-readable JSON")
	return cmd
}

func renderTokens(w io.Writer, set theme.Set, styled bool) error {
	newTable := func(title string, header prettytable.Row) prettytable.Writer {
		tw := prettytable.NewWriter()
		tw.SetOutputMirror(w)
		if styled {
			tw.SetStyle(prettytable.StyleLight)
		} else {
			tw.SetStyle(prettytable.StyleDefault)
		}
		tw.Style().Options.SeparateRows = false
		tw.SetTitle(title)
		tw.AppendHeader(header)
		return tw
	}

	domains := newTable("Domains", prettytable.Row{"DOMAIN", "NAME", "ACCENT", "TERMINAL", "DESCRIPTION"})
	for _, entry := range set.Domains {
		hex, err := theme.TerminalColor(entry.Accent)
		if err != nil {
			return fmt.Errorf("convert %s accent: %w", entry.Domain.Slug(), err)
		}
		domains.AppendRow(prettytable.Row{entry.Domain.Slug(), entry.Name, entry.Accent, hex, entry.Description})
	}
	domains.Render()

	scales := []struct {
		title  string
		tokens []theme.Token
	}{
		{"Fonts", set.Typography.Fonts},
		{"Font sizes", set.Typography.Sizes},
		{"Line heights", set.Typography.Leading},
		{"Domain colours", set.Colors.Domains},
		{"Tier colours", set.Colors.Tiers},
		{"Spacing", set.Spacing},
		{"Transitions", set.Transitions},
		{"Radius", set.Radius},
	}
	for _, scale := range scales {
		fmt.Fprintln(w)
		tw := newTable(scale.title, prettytable.Row{"TOKEN", "VALUE"})
		for _, tok := range scale.tokens {
			tw.AppendRow(prettytable.Row{tok.Name, tok.Value})
		}
		tw.Render()
	}

	fmt.Fprintln(w)
	levels := newTable("Confidence levels", prettytable.Row{"LEVEL", "THRESHOLD"})
	levels.SetColumnConfigs([]prettytable.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	for _, level := range set.Confidence {
		levels.AppendRow(prettytable.Row{level.Name, fmt.Sprintf("%d%%", level.Threshold)})
	}
	levels.Render()
	return nil
}
