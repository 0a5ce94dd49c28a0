// Package rank 提供排序阶段的 Node。
package rank

import (
	"context"

	"github.com/rushteam/baikerank/core"
	"github.com/rushteam/baikerank/model"
	"github.com/rushteam/baikerank/pipeline"
)

// FeatureSource 为 (查询, 实体) 抽取具名特征，model.RankingModel 实现了它。
type FeatureSource interface {
	Features(ctx context.Context, q core.Query, entity string) map[string]float64
}

// ModelNode 用 RankModel 为每个 Item 打分并按分数降序稳定排序。
//   - Features 非空时先为每个 Item 抽取特征（覆盖已有特征）
//   - 分数相同保持输入顺序
type ModelNode struct {
	Features FeatureSource
	Model    model.RankModel
}

// NewModelNode 用训练好的排序模型构建节点
func NewModelNode(m *model.RankingModel) *ModelNode {
	return &ModelNode{Features: m, Model: m.Classifier()}
}

func (n *ModelNode) Name() string        { return "rank.model" }
func (n *ModelNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *ModelNode) Process(
	ctx context.Context,
	q core.Query,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Model == nil || len(items) == 0 {
		return items, nil
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if n.Features != nil {
			it.Features = n.Features.Features(ctx, q, it.ID)
		}
		score, err := n.Model.Predict(it.Features)
		if err != nil {
			return nil, err
		}
		it.Score = score
	}

	core.SortByScore(items)
	return items, nil
}
