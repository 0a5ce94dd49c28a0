package rerank

import (
	"context"
	"reflect"
	"testing"

	"github.com/rushteam/baikerank/core"
	"github.com/rushteam/baikerank/pipeline"
)

func TestTopNNode(t *testing.T) {
	tests := []struct {
		n    int
		want []string
	}{
		{0, []string{"a", "b", "c"}},
		{2, []string{"a", "b"}},
		{5, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		got, err := (&TopNNode{N: tt.n}).Process(context.Background(), core.Query{}, core.NewItems([]string{"a", "b", "c"}))
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if ids := core.ItemIDs(got); !reflect.DeepEqual(ids, tt.want) {
			t.Errorf("TopN(%d) = %v, want %v", tt.n, ids, tt.want)
		}
	}
}

func TestLimitNode(t *testing.T) {
	limits, err := ParseLimits("restaurant:2, movie:1")
	if err != nil {
		t.Fatalf("ParseLimits() error = %v", err)
	}
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{&LimitNode{Limits: limits}}}
	entities := []string{"a", "b", "c"}

	tests := []struct {
		subtask core.Subtask
		want    []string
	}{
		{core.SubtaskRestaurant, []string{"a", "b"}},
		{core.SubtaskMovie, []string{"a"}},
		{core.SubtaskCelebrity, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		got, err := p.RunEntities(context.Background(), core.Query{Subtask: tt.subtask}, entities)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.subtask, got, tt.want)
		}
	}
}

func TestParseLimits_Errors(t *testing.T) {
	for _, s := range []string{"restaurant", "bar:1", "movie:x", "movie:-1"} {
		if _, err := ParseLimits(s); err == nil {
			t.Errorf("ParseLimits(%q) error = nil", s)
		}
	}
	limits, err := ParseLimits("")
	if err != nil || len(limits) != 0 {
		t.Errorf("ParseLimits(\"\") = %v, %v", limits, err)
	}
}
