package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rushteam/baikerank/core"
	"github.com/rushteam/baikerank/eval"
	"github.com/rushteam/baikerank/experiment"
)

type stubStore struct{}

func (stubStore) LookupSummary(_ context.Context, entity string) (string, error) {
	if entity == "known" {
		return "summary", nil
	}
	return "", core.ErrEntityNotFound
}

func (stubStore) LookupContent(context.Context, string) (string, error) {
	return "", errors.New("db closed")
}

func TestInstrumentEntityStore(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	es := InstrumentEntityStore(stubStore{}, m)
	ctx := context.Background()

	if text, err := es.LookupSummary(ctx, "known"); err != nil || text != "summary" {
		t.Fatalf("LookupSummary(known) = %q, %v", text, err)
	}
	if _, err := es.LookupSummary(ctx, "unknown"); !core.IsNotFound(err) {
		t.Fatalf("LookupSummary(unknown) error = %v", err)
	}
	_, _ = es.LookupContent(ctx, "known")

	tests := []struct {
		source, result string
		want           float64
	}{
		{SourceSummary, ResultHit, 1},
		{SourceSummary, ResultMiss, 1},
		{SourceContent, ResultError, 1},
		{SourceContent, ResultHit, 0},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(m.entityLookups.WithLabelValues(tt.source, tt.result))
		if got != tt.want {
			t.Errorf("lookups{%s,%s} = %v, want %v", tt.source, tt.result, got, tt.want)
		}
	}

	if InstrumentEntityStore(stubStore{}, nil) != (stubStore{}) {
		t.Error("nil metrics should return the store unchanged")
	}
}

func TestObserveScoresAndWriteTextfile(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	m.ObserveCV(experiment.CVResult{core.SubtaskMovie: {Mean: 0.7}})
	m.ObserveHeldOut(&eval.Result{
		Subtasks: map[core.Subtask]*eval.SubtaskResult{core.SubtaskCelebrity: {Score: 0.9}},
		Score:    0.9,
	})
	m.FoldHook()(0, 2*time.Second, nil)
	m.IncRuns("run", nil)

	if got := testutil.ToFloat64(m.mapScore.WithLabelValues("cv", "movie")); got != 0.7 {
		t.Errorf("map{cv,movie} = %v", got)
	}
	if got := testutil.ToFloat64(m.mapScore.WithLabelValues("heldout", "all")); got != 0.9 {
		t.Errorf("map{heldout,all} = %v", got)
	}
	if got := testutil.CollectAndCount(m.foldDuration); got != 1 {
		t.Errorf("fold duration series = %d", got)
	}

	path := filepath.Join(t.TempDir(), "baikerank.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{MetricFoldDuration, MetricMAP, MetricRuns} {
		if !strings.Contains(string(data), name) {
			t.Errorf("textfile missing %s", name)
		}
	}

	if err := m.WriteTextfile(""); err != nil {
		t.Errorf("WriteTextfile(\"\") error = %v", err)
	}
}
