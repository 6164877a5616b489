package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shouni/gemini-image-editor/pkg/domain"
	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "編集プリセットとアスペクト比の一覧を表示します",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printCatalog(cmd.OutOrStdout())
	},
}

func printCatalog(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tLABEL\tINSTRUCTION")
	for _, p := range domain.Presets() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Key, p.Label, p.Instruction)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, "アスペクト比:")
	for _, a := range domain.AspectRatios() {
		mark := ""
		if a == domain.DefaultAspectRatio {
			mark = " (既定)"
		}
		fmt.Fprintf(out, " %s%s", a, mark)
	}
	_, err := fmt.Fprintln(out)
	return err
}
