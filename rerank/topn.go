// Package rerank 提供重排阶段的 Node，目前用于提交结果的条数限制。
package rerank

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rushteam/baikerank/core"
	"github.com/rushteam/baikerank/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，用于在排序后截取前 N 个实体。
//
// 示例：
//
//	p := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        rank.NewModelNode(m),     // 排序
//	        &rerank.TopNNode{N: 70},  // 截取 Top 70
//	    },
//	}
type TopNNode struct {
	// N 要保留的数量；N <= 0 或 N >= len(items) 时返回全部
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ core.Query,
	items []*core.Item,
) ([]*core.Item, error) {
	return truncate(items, n.N), nil
}

func truncate(items []*core.Item, n int) []*core.Item {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}

// LimitNode 按查询的子任务截断，未配置的子任务不截断。
type LimitNode struct {
	Limits map[core.Subtask]int
}

func (n *LimitNode) Name() string {
	return "rerank.limit"
}

func (n *LimitNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *LimitNode) Process(
	_ context.Context,
	q core.Query,
	items []*core.Item,
) ([]*core.Item, error) {
	return truncate(items, n.Limits[q.Subtask]), nil
}

// ParseLimits 解析 "restaurant:70,movie:100" 形式的条数限制
func ParseLimits(s string) (map[core.Subtask]int, error) {
	limits := make(map[core.Subtask]int)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			return nil, core.NewDomainError(core.ModuleData, core.ErrorCodeInvalidInput,
				fmt.Sprintf("result limit %q: want subtask:count", part))
		}
		t, err := core.ParseSubtask(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return nil, core.NewDomainError(core.ModuleData, core.ErrorCodeInvalidInput,
				fmt.Sprintf("result limit %q: invalid count", part))
		}
		limits[t] = n
	}
	return limits, nil
}
