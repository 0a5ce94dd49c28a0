// Package metrics 提供实验运行的 Prometheus 指标：折耗时、实体查询命中、MAP。
// 指标注册在私有 Registry 上，命令结束时可写成 node_exporter textfile。
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rushteam/baikerank/core"
	"github.com/rushteam/baikerank/eval"
	"github.com/rushteam/baikerank/experiment"
)

// 指标名
const (
	MetricFoldDuration  = "baikerank_cv_fold_duration_seconds"
	MetricEntityLookups = "baikerank_entity_lookups_total"
	MetricMAP           = "baikerank_map"
	MetricRuns          = "baikerank_runs_total"
)

// 实体查询结果
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

// 运行状态
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics 汇总一次命令运行的指标，并发安全。
type Metrics struct {
	registry      *prometheus.Registry
	foldDuration  prometheus.Histogram
	entityLookups *prometheus.CounterVec
	mapScore      *prometheus.GaugeVec
	runs          *prometheus.CounterVec
}

// New 创建指标并注册到新的私有 Registry
func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		foldDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricFoldDuration,
			Help:    "Duration of one cross-validation fold (train + evaluate) in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}),
		entityLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricEntityLookups,
			Help: "Entity text lookups by source (summary/content) and result",
		}, []string{"source", "result"}),
		mapScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricMAP,
			Help: "Mean average precision by phase (cv/heldout) and subtask",
		}, []string{"phase", "subtask"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRuns,
			Help: "Command runs by command and status",
		}, []string{"command", "status"}),
	}
	for _, c := range m.Collectors() {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

// Collectors 返回所有 collector
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.foldDuration, m.entityLookups, m.mapScore, m.runs}
}

// Registry 返回私有 Registry
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// FoldHook 返回记录折耗时的 experiment.FoldHook
func (m *Metrics) FoldHook() experiment.FoldHook {
	return func(_ int, elapsed time.Duration, _ *eval.Result) {
		m.foldDuration.Observe(elapsed.Seconds())
	}
}

// ObserveLookup 记录一次实体查询
func (m *Metrics) ObserveLookup(source string, err error) {
	result := ResultHit
	switch {
	case err == nil:
	case core.IsNotFound(err):
		result = ResultMiss
	default:
		result = ResultError
	}
	m.entityLookups.WithLabelValues(source, result).Inc()
}

// ObserveCV 记录交叉验证各子任务的平均 MAP
func (m *Metrics) ObserveCV(cv experiment.CVResult) {
	for _, t := range cv.Present() {
		m.mapScore.WithLabelValues("cv", string(t)).Set(cv[t].Mean)
	}
}

// ObserveHeldOut 记录留出集各子任务及整体 MAP
func (m *Metrics) ObserveHeldOut(res *eval.Result) {
	if res == nil {
		return
	}
	for _, t := range res.Present() {
		m.mapScore.WithLabelValues("heldout", string(t)).Set(res.Subtasks[t].Score)
	}
	m.mapScore.WithLabelValues("heldout", "all").Set(res.Score)
}

// IncRuns 记录一次命令运行
func (m *Metrics) IncRuns(command string, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	m.runs.WithLabelValues(command, status).Inc()
}

// WriteTextfile 以文本格式写出所有指标；path 为空时不做任何事
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
