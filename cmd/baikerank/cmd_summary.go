package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/baikerank/experiment"
	"github.com/rushteam/baikerank/metrics"
	"github.com/rushteam/baikerank/report"
)

func newSummaryCommand(root *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the latest experiment of every feature set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "table" && format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported format %q: must be table, json or yaml", format)
			}
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			return withMetrics(cfg, "summary", func(_ *metrics.Metrics) error {
				db, err := experiment.OpenDB(cfg.ExperimentDB)
				if err != nil {
					return err
				}
				defer db.Close()

				rows, err := db.Summaries(cmd.Context())
				if err != nil {
					return err
				}
				return printSummaries(cmd.OutOrStdout(), rows, format)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json or yaml")
	return cmd
}

func printSummaries(w io.Writer, rows []experiment.Summary, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	default:
		if len(rows) == 0 {
			_, err := fmt.Fprintln(w, "No experiments recorded.")
			return err
		}
		return report.ExperimentsTable(rows).Render(w)
	}
}
