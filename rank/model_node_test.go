package rank

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rushteam/baikerank/core"
	"github.com/rushteam/baikerank/pipeline"
)

type lengthFeatures struct{}

func (lengthFeatures) Features(_ context.Context, _ core.Query, entity string) map[string]float64 {
	return map[string]float64{"len": float64(len([]rune(entity)))}
}

type linearModel struct{ err error }

func (m linearModel) Name() string { return "linear" }

func (m linearModel) Predict(features map[string]float64) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return features["len"], nil
}

func TestModelNode_Process(t *testing.T) {
	node := &ModelNode{Features: lengthFeatures{}, Model: linearModel{}}
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{node}}

	got, err := p.RunEntities(context.Background(), core.Query{Subtask: core.SubtaskMovie, Text: "q"},
		[]string{"ab", "abcd", "cd", "a", "efgh"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []string{"abcd", "efgh", "ab", "cd", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Run() = %v, want %v", got, want)
	}
}

func TestModelNode_Error(t *testing.T) {
	node := &ModelNode{Features: lengthFeatures{}, Model: linearModel{err: errors.New("boom")}}
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{node}}
	if _, err := p.RunEntities(context.Background(), core.Query{}, []string{"a"}); err == nil {
		t.Error("Run() error = nil, want model error")
	}
}

func TestModelNode_NoModel(t *testing.T) {
	items := core.NewItems([]string{"b", "a"})
	got, err := (&ModelNode{}).Process(context.Background(), core.Query{}, items)
	if err != nil || !reflect.DeepEqual(core.ItemIDs(got), []string{"b", "a"}) {
		t.Errorf("Process() = %v, %v", core.ItemIDs(got), err)
	}
}
