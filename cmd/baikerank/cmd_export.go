package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rushteam/baikerank/config"
	"github.com/rushteam/baikerank/core"
	"github.com/rushteam/baikerank/dataio"
	"github.com/rushteam/baikerank/metrics"
	"github.com/rushteam/baikerank/model"
	"github.com/rushteam/baikerank/pipeline"
	"github.com/rushteam/baikerank/rank"
	"github.com/rushteam/baikerank/rerank"
)

type exportOptions struct {
	modelID      int64
	resultLimits string
	outputDir    string
}

func newExportCommand(root *rootOptions) *cobra.Command {
	opts := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Rank the test set with a saved model and write submission files",
		Long: `Load models/<id>.model, rank the candidates of every test query and write
one file per subtask (output/<subtask>.txt), one line per query:

  query<TAB>entity1<TAB>entity2...

Result limits (e.g. restaurant:70) truncate the ranking of a subtask.`,
		Example: `  baikerank export --model-id 12
  baikerank export --model-id 12 --result-limits restaurant:70,movie:100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("result-limits") {
				cfg.ResultLimits = opts.resultLimits
			}
			if cmd.Flags().Changed("output-dir") {
				cfg.OutputDir = opts.outputDir
			}
			return withMetrics(cfg, "export", func(m *metrics.Metrics) error {
				return exportResults(cmd.Context(), cfg, opts.modelID, cmd.OutOrStdout(), m)
			})
		},
	}

	cmd.Flags().Int64Var(&opts.modelID, "model-id", 0, "ID of the experiment whose model is used")
	cmd.Flags().StringVar(&opts.resultLimits, "result-limits", "restaurant:70", "Comma separated subtask:count limits; subtasks not listed export all results")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "output", "Directory for submission files")
	_ = cmd.MarkFlagRequired("model-id")

	return cmd
}

func exportResults(ctx context.Context, cfg *config.Config, modelID int64, out io.Writer, m *metrics.Metrics) error {
	limits, err := cfg.Limits()
	if err != nil {
		return err
	}
	path := modelPath(cfg, modelID)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot find model %s: %w", path, err)
	}

	reg, closeStore, err := openRegistry(ctx, cfg, m)
	if err != nil {
		return err
	}
	defer closeStore()

	rm, err := model.LoadFile(path, reg)
	if err != nil {
		return fmt.Errorf("load model %s: %w", path, err)
	}
	testData, err := dataio.LoadDataset(cfg.Data.TestTemplate, core.Subtasks,
		dataio.WithTestData(), dataio.WithEncoding(cfg.Data.Encoding))
	if err != nil {
		return fmt.Errorf("load test data: %w", err)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", cfg.OutputDir, err)
	}

	p := &pipeline.Pipeline{Nodes: []pipeline.Node{
		rank.NewModelNode(rm),
		&rerank.LimitNode{Limits: limits},
	}}
	for _, t := range core.Subtasks {
		rows := make([]dataio.Ranking, 0, len(testData[t]))
		for _, group := range testData[t] {
			ranked, err := p.RunEntities(ctx, core.Query{Subtask: t, Text: group.Text}, group.Entities())
			if err != nil {
				return fmt.Errorf("rank %s query %q: %w", t, group.Text, err)
			}
			rows = append(rows, dataio.Ranking{Query: group.Text, Entities: ranked})
		}
		file := filepath.Join(cfg.OutputDir, string(t)+".txt")
		if err := dataio.WriteRankingsFile(file, rows, cfg.Data.Encoding); err != nil {
			return err
		}
		slog.Info("results exported", "subtask", t, "queries", len(rows), "path", file)
		fmt.Fprintf(out, "%s: %d queries -> %s\n", t, len(rows), file) //nolint:errcheck
	}
	return nil
}
