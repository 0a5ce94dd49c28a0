package eval

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/rushteam/baikerank/core"
)

func TestAveragePrecisionAtK(t *testing.T) {
	tests := []struct {
		name      string
		actual    []string
		predicted []string
		k         int
		want      float64
	}{
		{"hits at 2 and 4", []string{"A", "B"}, []string{"C", "A", "D", "B"}, 4, 0.5},
		{"perfect", []string{"A", "B"}, []string{"A", "B", "C"}, 3, 1},
		{"empty ground truth", nil, []string{"A", "B"}, 2, 0},
		{"no hits", []string{"X"}, []string{"A", "B"}, 2, 0},
		{"k truncates", []string{"A", "B"}, []string{"C", "A", "B"}, 1, 0},
		{"k zero means full length", []string{"B"}, []string{"A", "B"}, 0, 0.5},
		{"duplicates counted once", []string{"A", "B"}, []string{"A", "A", "B"}, 3, (1.0 + 2.0/3) / 2},
		{"denominator capped by k", []string{"A", "B", "C"}, []string{"A", "D"}, 2, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AveragePrecisionAtK(tt.actual, tt.predicted, tt.k)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("AveragePrecisionAtK(%v, %v, %d) = %v, want %v", tt.actual, tt.predicted, tt.k, got, tt.want)
			}
		})
	}
}

// 最后一个命中之后的非相关条目无论怎么排列，AP 不变
func TestAveragePrecisionAtK_TailOrderIrrelevant(t *testing.T) {
	actual := []string{"A", "B"}
	head := []string{"X", "A", "Y", "B"}
	tail := []string{"P", "Q", "R", "S"}
	want := AveragePrecisionAtK(actual, append(append([]string(nil), head...), tail...), 8)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		perm := append([]string(nil), tail...)
		rng.Shuffle(len(perm), func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })
		predicted := append(append([]string(nil), head...), perm...)
		if got := AveragePrecisionAtK(actual, predicted, 8); got != want {
			t.Fatalf("AveragePrecisionAtK(%v) = %v, want %v", predicted, got, want)
		}
	}
}

// sortRanker 按实体名字典序排序，与输入顺序无关
type sortRanker struct{}

func (sortRanker) Rank(_ context.Context, _ core.Query, entities []string) ([]string, error) {
	out := append([]string(nil), entities...)
	sort.Strings(out)
	return out, nil
}

type errRanker struct{}

func (errRanker) Rank(context.Context, core.Query, []string) ([]string, error) {
	return nil, errors.New("boom")
}

func TestEvaluate(t *testing.T) {
	data := core.Dataset{
		core.SubtaskMovie: {
			{Text: "q1", Candidates: []core.Candidate{{Entity: "b", Label: 0}, {Entity: "a", Label: 1}}},
			{Text: "q2", Candidates: []core.Candidate{{Entity: "a", Label: 0}, {Entity: "b", Label: 1}}},
		},
		core.SubtaskCelebrity: {
			{Text: "q3", Candidates: []core.Candidate{{Entity: "x", Label: 1}}},
		},
		core.SubtaskTVShow: {},
	}

	res, err := Evaluate(context.Background(), sortRanker{}, data, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if _, ok := res.Subtasks[core.SubtaskTVShow]; ok {
		t.Errorf("empty subtask should be omitted")
	}
	movie := res.Subtasks[core.SubtaskMovie]
	if movie == nil || len(movie.QueryResults) != 2 {
		t.Fatalf("movie result = %+v", movie)
	}
	if movie.Score != 0.75 {
		t.Errorf("movie MAP = %v, want 0.75", movie.Score)
	}
	q2 := movie.QueryResults[1]
	if q2.ID != 1 || q2.Term != "q2" || q2.AP != 0.5 {
		t.Errorf("q2 = %+v", q2)
	}
	if want := []RankedEntity{{Entity: "a"}, {Entity: "b", IsGS: true}}; q2.Ranked[0] != want[0] || q2.Ranked[1] != want[1] {
		t.Errorf("q2 ranked = %+v, want %+v", q2.Ranked, want)
	}
	if res.Subtasks[core.SubtaskCelebrity].Score != 1 {
		t.Errorf("celebrity MAP = %v, want 1", res.Subtasks[core.SubtaskCelebrity].Score)
	}
	// 子任务简单平均，不按查询数加权
	if res.Score != (0.75+1)/2 {
		t.Errorf("overall = %v, want 0.875", res.Score)
	}
	if got := res.Present(); len(got) != 2 || got[0] != core.SubtaskCelebrity || got[1] != core.SubtaskMovie {
		t.Errorf("Present() = %v", got)
	}
}

func TestEvaluateQuery_ShufflePreservesLabels(t *testing.T) {
	group := core.QueryGroup{Text: "q", Candidates: []core.Candidate{
		{Entity: "a", Label: 1}, {Entity: "b", Label: 0}, {Entity: "c", Label: 1}, {Entity: "d", Label: 0},
	}}
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		qr, err := EvaluateQuery(context.Background(), sortRanker{}, core.SubtaskMovie, 0, group, rng)
		if err != nil {
			t.Fatalf("EvaluateQuery() error = %v", err)
		}
		var gs int
		for _, r := range qr.Ranked {
			if r.IsGS {
				gs++
			}
		}
		if len(qr.Ranked) != 4 || gs != 2 {
			t.Fatalf("ranked = %+v", qr.Ranked)
		}
	}
	// 原始候选顺序不被修改
	if group.Candidates[0].Entity != "a" || group.Candidates[3].Entity != "d" {
		t.Errorf("input candidates modified: %+v", group.Candidates)
	}
}

func TestEvaluate_RankerError(t *testing.T) {
	data := core.Dataset{core.SubtaskMovie: {{Text: "q", Candidates: []core.Candidate{{Entity: "a", Label: 1}}}}}
	if _, err := Evaluate(context.Background(), errRanker{}, data, nil); err == nil {
		t.Error("Evaluate() error = nil, want ranker error")
	}
}
