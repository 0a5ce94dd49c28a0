package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rushteam/baikerank/core"
)

type funcNode struct {
	name string
	fn   func(items []*core.Item) ([]*core.Item, error)
}

func (n *funcNode) Name() string { return n.name }
func (n *funcNode) Kind() Kind   { return KindPostProcess }
func (n *funcNode) Process(_ context.Context, _ core.Query, items []*core.Item) ([]*core.Item, error) {
	return n.fn(items)
}

func TestPipeline_RunEntities(t *testing.T) {
	reverse := &funcNode{name: "reverse", fn: func(items []*core.Item) ([]*core.Item, error) {
		out := make([]*core.Item, len(items))
		for i, it := range items {
			out[len(items)-1-i] = it
		}
		return out, nil
	}}
	first2 := &funcNode{name: "first2", fn: func(items []*core.Item) ([]*core.Item, error) {
		return items[:2], nil
	}}
	p := &Pipeline{Nodes: []Node{reverse, first2}}

	got, err := p.RunEntities(context.Background(), core.Query{Subtask: core.SubtaskMovie, Text: "q"}, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("RunEntities() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"c", "b"}) {
		t.Errorf("RunEntities() = %v, want [c b]", got)
	}
}

func TestPipeline_NodeError(t *testing.T) {
	boom := errors.New("boom")
	p := &Pipeline{Nodes: []Node{&funcNode{name: "broken", fn: func([]*core.Item) ([]*core.Item, error) {
		return nil, boom
	}}}}

	_, err := p.RunEntities(context.Background(), core.Query{}, []string{"a"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if err.Error() != "broken: boom" {
		t.Errorf("err = %q, want node name prefix", err.Error())
	}
}

func TestPipeline_Empty(t *testing.T) {
	got, err := (&Pipeline{}).RunEntities(context.Background(), core.Query{}, []string{"a", "b"})
	if err != nil || !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("RunEntities() = %v, %v", got, err)
	}
}
