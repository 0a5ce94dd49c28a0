// Package pipeline 把对一个查询的候选处理拆成可组合的 Node 链：打分排序、截断等。
package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/baikerank/core"
)

// Pipeline 依次执行 Nodes，上一个 Node 的输出是下一个的输入。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	q core.Query,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, q, cur)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}

// RunEntities 为实体创建 Item 后执行 Pipeline，返回最终的实体顺序
func (p *Pipeline) RunEntities(ctx context.Context, q core.Query, entities []string) ([]string, error) {
	items, err := p.Run(ctx, q, core.NewItems(entities))
	if err != nil {
		return nil, err
	}
	return core.ItemIDs(items), nil
}
