package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/rushteam/baikerank/core"
	"github.com/rushteam/baikerank/eval"
	"github.com/rushteam/baikerank/feature"
	"github.com/rushteam/baikerank/model"
)

// DefaultFolds 是默认的交叉验证折数
const DefaultFolds = 10

// CVSubtask 是一个子任务在各折上的汇总：MAP 的均值与总体标准差，以及所有折的查询诊断。
type CVSubtask struct {
	Mean         float64            `json:"mean" yaml:"mean"`
	Std          float64            `json:"std" yaml:"std"`
	FoldScores   []float64          `json:"fold_scores" yaml:"fold_scores"`
	QueryResults []eval.QueryResult `json:"query_results" yaml:"query_results"`
}

// CVResult 是交叉验证结果，按子任务索引。
type CVResult map[core.Subtask]*CVSubtask

// Present 按 core.Subtasks 顺序返回有结果的子任务
func (r CVResult) Present() []core.Subtask {
	out := make([]core.Subtask, 0, len(r))
	for _, t := range core.Subtasks {
		if _, ok := r[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// FoldHook 在每折完成后调用（可能来自多个 goroutine）。
type FoldHook func(fold int, elapsed time.Duration, res *eval.Result)

// CrossValidator 执行 K 折交叉验证：每折训练一个新模型并在留出片上评估。
type CrossValidator struct {
	registry    *feature.Registry
	folds       int
	seed        int64
	parallelism int
	trainOpts   []model.TrainOption
	hook        FoldHook
}

// CVOption 交叉验证选项
type CVOption func(*CrossValidator)

// WithFolds 设置折数
func WithFolds(k int) CVOption {
	return func(cv *CrossValidator) { cv.folds = k }
}

// WithSeed 设置切分与评估打乱用的种子
func WithSeed(seed int64) CVOption {
	return func(cv *CrossValidator) { cv.seed = seed }
}

// WithParallelism 设置同时运行的折数上限，<= 0 表示 runtime.NumCPU()
func WithParallelism(n int) CVOption {
	return func(cv *CrossValidator) { cv.parallelism = n }
}

// WithTrainOptions 设置每折训练的参数
func WithTrainOptions(opts ...model.TrainOption) CVOption {
	return func(cv *CrossValidator) { cv.trainOpts = opts }
}

// WithFoldHook 设置每折完成的回调
func WithFoldHook(h FoldHook) CVOption {
	return func(cv *CrossValidator) { cv.hook = h }
}

// NewCrossValidator 创建交叉验证器
func NewCrossValidator(reg *feature.Registry, opts ...CVOption) *CrossValidator {
	cv := &CrossValidator{
		registry: reg,
		folds:    DefaultFolds,
	}
	for _, opt := range opts {
		opt(cv)
	}
	if cv.parallelism <= 0 {
		cv.parallelism = runtime.NumCPU()
	}
	return cv
}

// Run 对 data 做交叉验证。
//
// 各折并行执行，第 i 折用 seed+i 作为评估打乱的种子；
// 汇总按折序进行，因此结果与调度无关。任一折出错即中止。
func (cv *CrossValidator) Run(ctx context.Context, names []string, data core.Dataset) (CVResult, error) {
	if err := cv.registry.Validate(names); err != nil {
		return nil, err
	}
	folds, err := Partition(data, cv.folds, cv.seed)
	if err != nil {
		return nil, err
	}

	results := make([]*eval.Result, len(folds))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(cv.parallelism)
	for _, f := range folds {
		fold := f
		eg.Go(func() error {
			start := time.Now()
			slog.Info("fold started", "fold", fold.Index+1, "folds", len(folds))

			m, err := model.Train(egCtx, cv.registry, names, fold.Train, cv.trainOpts...)
			if err != nil {
				return fmt.Errorf("fold %d: train: %w", fold.Index, err)
			}
			rng := rand.New(rand.NewSource(cv.seed + int64(fold.Index)))
			res, err := eval.Evaluate(egCtx, m, fold.Test, rng)
			if err != nil {
				return fmt.Errorf("fold %d: %w", fold.Index, err)
			}
			results[fold.Index] = res

			elapsed := time.Since(start)
			slog.Info("fold finished", "fold", fold.Index+1, "score", res.Score, "elapsed", elapsed)
			if cv.hook != nil {
				cv.hook(fold.Index, elapsed, res)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return aggregate(results), nil
}

// aggregate 按折序汇总；某折没有测试查询的子任务不计入该折分数。
func aggregate(results []*eval.Result) CVResult {
	out := make(CVResult)
	for _, t := range core.Subtasks {
		var agg *CVSubtask
		for _, res := range results {
			sr, ok := res.Subtasks[t]
			if !ok {
				continue
			}
			if agg == nil {
				agg = &CVSubtask{}
			}
			agg.FoldScores = append(agg.FoldScores, sr.Score)
			agg.QueryResults = append(agg.QueryResults, sr.QueryResults...)
		}
		if agg == nil {
			continue
		}
		agg.Mean, agg.Std = stat.PopMeanStdDev(agg.FoldScores, nil)
		out[t] = agg
	}
	return out
}
