package pipeline

import (
	"context"

	"github.com/rushteam/baikerank/core"
)

// Kind 用于标记 Node 类型，方便观测与编排（例如按阶段打点）。
type Kind string

const (
	KindRank        Kind = "rank"        // 排序阶段：对候选打分并排序
	KindReRank      Kind = "rerank"      // 重排阶段：在排序结果上截断或调整
	KindPostProcess Kind = "postprocess" // 后处理阶段：最终结果修饰
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态，query 在整条链路上不变。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		q core.Query,
		items []*core.Item,
	) ([]*core.Item, error)
}
