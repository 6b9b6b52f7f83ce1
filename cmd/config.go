package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/driftdash/internal/config"
	"github.com/KaramelBytes/driftdash/internal/report"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set driftdash configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		for _, k := range cfgpkg.Keys {
			v, err := c.Value(k)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", k, v)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long: `Set one configuration key and write the result to the config file.
Keys: data_path, split_index, delimiter, reports_dir, engine, histogram_bins,
drift_threshold, drift_share, top_categories, listen_addr.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := *currentConfig()
		if err := c.Set(args[0], args[1]); err != nil {
			return err
		}
		if _, ok := report.NewEngine(c.Engine, report.Settings{}); !ok {
			return fmt.Errorf("invalid engine: %s (available: %v)", c.Engine, report.EngineNames())
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&c, cfgFile); err != nil {
			return err
		}
		cfg = &c
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetCmd)
}
