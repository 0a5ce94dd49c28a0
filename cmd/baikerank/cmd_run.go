package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rushteam/baikerank/config"
	"github.com/rushteam/baikerank/core"
	"github.com/rushteam/baikerank/dataio"
	"github.com/rushteam/baikerank/eval"
	"github.com/rushteam/baikerank/experiment"
	"github.com/rushteam/baikerank/metrics"
	"github.com/rushteam/baikerank/model"
	"github.com/rushteam/baikerank/report"
)

type runOptions struct {
	extractors  string
	folds       int
	seed        int64
	parallelism int
	filter      string
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a cross-validation + held-out experiment for a feature set",
		Long: `Run an experiment for a combination of feature extractors.

The command performs K-fold cross-validation on the cv data, trains a final
model on all cv data (saved to models/<id>.model), evaluates it on the
held-out data, records the result in the experiment database and exports an
HTML report for error analysis to reports/<id>.html.`,
		Example: `  baikerank run --extractors nchar,cont_match
  baikerank run -c baikerank.yaml --filter 'q.ap < 0.5'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)
			return withMetrics(cfg, "run", func(m *metrics.Metrics) error {
				return runExperiment(cmd.Context(), cfg, cmd.OutOrStdout(), m)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.extractors, "extractors", "e", config.DefaultExtractors, "Comma separated extractors to use")
	cmd.Flags().IntVar(&opts.folds, "cv-folds", experiment.DefaultFolds, "Folds of cross validation")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "Seed for fold partitioning and evaluation shuffles")
	cmd.Flags().IntVarP(&opts.parallelism, "parallelism", "p", 0, "Folds run at the same time (0 = number of CPUs)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "CEL expression selecting queries shown in the report, e.g. 'q.ap < 0.5'")

	return cmd
}

// apply 用显式给出的 flag 覆盖配置
func (o *runOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("extractors") {
		cfg.Extractors = o.extractors
	}
	if cmd.Flags().Changed("cv-folds") {
		cfg.CVFolds = o.folds
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = o.seed
	}
	if cmd.Flags().Changed("parallelism") {
		cfg.Parallelism = o.parallelism
	}
	if cmd.Flags().Changed("filter") {
		cfg.ReportFilter = o.filter
	}
}

func runExperiment(ctx context.Context, cfg *config.Config, out io.Writer, m *metrics.Metrics) error {
	reg, closeStore, err := openRegistry(ctx, cfg, m)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := cfg.Validate(reg); err != nil {
		return err
	}
	filter, err := report.NewFilter(cfg.ReportFilter)
	if err != nil {
		return err
	}
	names := cfg.ExtractorNames()
	trainOpts := []model.TrainOption{
		model.WithC(cfg.Train.C),
		model.WithMaxIterations(cfg.Train.MaxIterations),
		model.WithFreeIntercept(cfg.Train.FreeIntercept),
	}

	enc := dataio.WithEncoding(cfg.Data.Encoding)
	cvData, err := dataio.LoadDataset(cfg.Data.CVTemplate, core.Subtasks, enc)
	if err != nil {
		return fmt.Errorf("load cv data: %w", err)
	}
	hdData, err := dataio.LoadDataset(cfg.Data.HeldOutTemplate, core.Subtasks, enc)
	if err != nil {
		return fmt.Errorf("load held-out data: %w", err)
	}

	db, err := experiment.OpenDB(cfg.ExperimentDB)
	if err != nil {
		return err
	}
	defer db.Close()

	exp, err := db.Create(ctx, names)
	if err != nil {
		return err
	}
	for _, dir := range []string{cfg.ReportsDir, cfg.ModelsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	reportPath := filepath.Join(cfg.ReportsDir, fmt.Sprintf("%03d.html", exp.ID))
	modelFile := modelPath(cfg, exp.ID)
	fmt.Fprintf(out, "Experiment ID: %d. Detailed report at %s. Model at %s\n\n", exp.ID, reportPath, modelFile) //nolint:errcheck
	slog.Info("experiment started", "id", exp.ID, "extractors", exp.Features(),
		"cv_queries", cvData.NumQueries(), "heldout_queries", hdData.NumQueries())

	cv := experiment.NewCrossValidator(reg,
		experiment.WithFolds(cfg.CVFolds),
		experiment.WithSeed(cfg.Seed),
		experiment.WithParallelism(cfg.Parallelism),
		experiment.WithTrainOptions(trainOpts...),
		experiment.WithFoldHook(m.FoldHook()),
	)
	exp.CV, err = cv.Run(ctx, names, cvData)
	if err != nil {
		return fmt.Errorf("cross validation: %w", err)
	}
	m.ObserveCV(exp.CV)

	final, err := model.Train(ctx, reg, names, cvData, trainOpts...)
	if err != nil {
		return fmt.Errorf("train final model: %w", err)
	}
	if err := final.SaveFile(modelFile); err != nil {
		return err
	}
	slog.Info("model saved", "path", modelFile)

	exp.HeldOut, err = eval.Evaluate(ctx, final, hdData, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		return fmt.Errorf("held-out evaluation: %w", err)
	}
	m.ObserveHeldOut(exp.HeldOut)

	if err := db.Save(ctx, exp); err != nil {
		return err
	}

	summary := report.FromExperiment(exp)
	if err := report.WriteText(out, summary); err != nil {
		return err
	}
	if err := writeHTMLReport(reportPath, summary, filter); err != nil {
		return err
	}
	slog.Info("report exported", "path", reportPath)
	return nil
}

func modelPath(cfg *config.Config, id int64) string {
	return filepath.Join(cfg.ModelsDir, fmt.Sprintf("%03d.model", id))
}

func writeHTMLReport(path string, s *report.Summary, filter *report.Filter) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.WriteHTML(f, s, filter); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
