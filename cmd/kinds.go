package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/driftdash/internal/report"
	"github.com/KaramelBytes/driftdash/internal/utils"
)

var kindsJSON bool

type kindInfo struct {
	Name        string `json:"name"`
	NeedsColumn bool   `json:"needs_column"`
	Imputes     bool   `json:"imputes"`
}

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the available report kinds",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		kinds := report.Kinds()
		if kindsJSON {
			infos := make([]kindInfo, len(kinds))
			for i, k := range kinds {
				infos[i] = kindInfo{Name: k.String(), NeedsColumn: k.NeedsColumn(), Imputes: k.Imputes()}
			}
			b, err := utils.PrettyJSON(infos)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		for _, k := range kinds {
			suffix := ""
			if k.NeedsColumn() {
				suffix = " (requires --column)"
			}
			fmt.Fprintf(out, "- %s%s\n", k, suffix)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(kindsCmd)
	kindsCmd.Flags().BoolVar(&kindsJSON, "json", false, "print the kinds as JSON")
}
