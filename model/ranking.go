package model

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rushteam/baikerank/core"
	"github.com/rushteam/baikerank/feature"
)

// Classifier 是拟合好的向量化器 + 逻辑回归，实现 RankModel。
type Classifier struct {
	Vectorizer *Vectorizer
	LR         *LRModel
}

func (c *Classifier) Name() string { return "lr" }

// Predict 返回正类概率；未见过的特征名被忽略。
func (c *Classifier) Predict(features map[string]float64) (float64, error) {
	return c.LR.PredictProba(c.Vectorizer.Transform(features)), nil
}

var _ RankModel = (*Classifier)(nil)

// RankingModel 是排序模型：组合抽取器 + Classifier。
//
// 训练后不可变；持久化只保存抽取器名称，加载时通过注册表重建抽取器。
type RankingModel struct {
	names      []string
	extractor  feature.Extractor
	classifier *Classifier
}

// TrainOption 训练选项
type TrainOption func(*LRTrainConfig)

// WithC 设置正则强度的倒数
func WithC(c float64) TrainOption {
	return func(cfg *LRTrainConfig) { cfg.C = c }
}

// WithMaxIterations 设置 L-BFGS 最大迭代次数
func WithMaxIterations(n int) TrainOption {
	return func(cfg *LRTrainConfig) { cfg.MaxIterations = n }
}

// WithFreeIntercept 让偏置不参与正则
func WithFreeIntercept(free bool) TrainOption {
	return func(cfg *LRTrainConfig) { cfg.FreeIntercept = free }
}

// Train 在 data 上训练排序模型。
//
// 所有 (子任务, 查询, 实体, 标签) 被展开为样本，按 core.Subtasks 顺序抽取特征，
// 向量化器只在这些训练样本上拟合。
func Train(ctx context.Context, reg *feature.Registry, names []string, data core.Dataset, opts ...TrainOption) (*RankingModel, error) {
	extractor, err := reg.BuildExtractor(names)
	if err != nil {
		return nil, err
	}
	cfg := DefaultLRTrainConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	var (
		rows   []map[string]float64
		labels []int
	)
	for _, subtask := range data.Present() {
		for _, group := range data[subtask] {
			q := core.Query{Subtask: subtask, Text: group.Text}
			for _, c := range group.Candidates {
				if c.Label != 0 && c.Label != 1 {
					return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
						fmt.Sprintf("model: candidate %q of query %q has no relevance label", c.Entity, group.Text))
				}
				rows = append(rows, feature.ToMap(extractor(ctx, q, c.Entity)))
				labels = append(labels, c.Label)
			}
		}
	}
	if len(rows) == 0 {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput, "model: no training samples")
	}

	vectorizer := FitVectorizer(rows)
	X := make([]SparseVector, len(rows))
	for i, row := range rows {
		X[i] = vectorizer.Transform(row)
	}
	lr, err := FitLR(X, labels, vectorizer.Dim(), cfg)
	if err != nil {
		return nil, err
	}
	slog.Debug("ranking model trained",
		"extractors", feature.JoinNames(names), "samples", len(rows), "features", vectorizer.Dim())

	return newRankingModel(names, extractor, &Classifier{Vectorizer: vectorizer, LR: lr}), nil
}

func newRankingModel(names []string, extractor feature.Extractor, c *Classifier) *RankingModel {
	n := make([]string, len(names))
	copy(n, names)
	return &RankingModel{names: n, extractor: extractor, classifier: c}
}

// ExtractorNames 返回训练时使用的抽取器名称
func (m *RankingModel) ExtractorNames() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Classifier 返回底层分类器
func (m *RankingModel) Classifier() *Classifier { return m.classifier }

// Features 用训练时的抽取器抽取特征
func (m *RankingModel) Features(ctx context.Context, q core.Query, entity string) map[string]float64 {
	return feature.ToMap(m.extractor(ctx, q, entity))
}

// Score 返回 (查询, 实体) 相关的概率
func (m *RankingModel) Score(ctx context.Context, q core.Query, entity string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return m.classifier.Predict(m.Features(ctx, q, entity))
}

// RankItems 为每个候选打分并按分数降序稳定排序，分数相同保持输入顺序。
func (m *RankingModel) RankItems(ctx context.Context, q core.Query, entities []string) ([]*core.Item, error) {
	items := core.NewItems(entities)
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		it.Features = m.Features(ctx, q, it.ID)
		score, err := m.classifier.Predict(it.Features)
		if err != nil {
			return nil, fmt.Errorf("score %q: %w", it.ID, err)
		}
		it.Score = score
	}
	core.SortByScore(items)
	return items, nil
}

// Rank 返回按模型概率排序后的实体
func (m *RankingModel) Rank(ctx context.Context, q core.Query, entities []string) ([]string, error) {
	items, err := m.RankItems(ctx, q, entities)
	if err != nil {
		return nil, err
	}
	return core.ItemIDs(items), nil
}
