package metrics

import (
	"context"

	"github.com/rushteam/baikerank/core"
)

// 实体查询来源
const (
	SourceSummary = "summary"
	SourceContent = "content"
)

// InstrumentedEntityStore 在 EntityStore 外记录每次查询的命中情况。
type InstrumentedEntityStore struct {
	next    core.EntityStore
	metrics *Metrics
}

// InstrumentEntityStore 包装 next；m 为 nil 时原样返回 next
func InstrumentEntityStore(next core.EntityStore, m *Metrics) core.EntityStore {
	if m == nil {
		return next
	}
	return &InstrumentedEntityStore{next: next, metrics: m}
}

func (s *InstrumentedEntityStore) LookupSummary(ctx context.Context, entity string) (string, error) {
	text, err := s.next.LookupSummary(ctx, entity)
	s.metrics.ObserveLookup(SourceSummary, err)
	return text, err
}

func (s *InstrumentedEntityStore) LookupContent(ctx context.Context, entity string) (string, error) {
	text, err := s.next.LookupContent(ctx, entity)
	s.metrics.ObserveLookup(SourceContent, err)
	return text, err
}

var _ core.EntityStore = (*InstrumentedEntityStore)(nil)
