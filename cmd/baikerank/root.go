package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rushteam/baikerank/config"
	"github.com/rushteam/baikerank/feature"
	"github.com/rushteam/baikerank/metrics"
	"github.com/rushteam/baikerank/store"
)

var version = "dev"

// rootOptions 是所有子命令共享的参数
type rootOptions struct {
	configPath      string
	metricsTextfile string
	debug           bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "baikerank",
		Short: "baikerank - entity reranking experiments for baike queries",
		Long: `baikerank reranks candidate entities for short queries (celebrity, movie,
restaurant, tvShow) with a logistic regression model over lexical overlap
features, runs cross-validation / held-out experiments and exports submissions.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (defaults are used when empty)")
	cmd.PersistentFlags().StringVar(&opts.metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file when the command ends")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if opts.debug {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newExportCommand(opts))
	cmd.AddCommand(newSummaryCommand(opts))
	cmd.AddCommand(newExtractorsCommand())

	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}

// loadConfig 读取配置文件并应用全局 flag
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("metrics-textfile") {
		cfg.MetricsTextfile = o.metricsTextfile
	}
	return cfg, nil
}

// withMetrics 执行 fn，并记录运行结果、按配置写出指标
func withMetrics(cfg *config.Config, command string, fn func(m *metrics.Metrics) error) error {
	m, err := metrics.New()
	if err != nil {
		return err
	}
	runErr := fn(m)
	m.IncRuns(command, runErr)
	if err := m.WriteTextfile(cfg.MetricsTextfile); err != nil {
		if runErr != nil {
			return runErr
		}
		return err
	}
	return runErr
}

// openRegistry 打开实体库并构建内置抽取器注册表；返回的函数关闭实体库。
func openRegistry(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*feature.Registry, func() error, error) {
	es, closeFn, err := store.Open(ctx, cfg.EntityStore)
	if err != nil {
		return nil, nil, fmt.Errorf("open entity store: %w", err)
	}
	es = metrics.InstrumentEntityStore(es, m)
	return feature.NewRegistry(feature.Builtins(es)...), closeFn, nil
}
