package eval

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rushteam/baikerank/core"
)

// Ranker 对一个查询的候选实体排序，model.RankingModel 实现了它。
type Ranker interface {
	Rank(ctx context.Context, q core.Query, entities []string) ([]string, error)
}

// RankedEntity 是排序结果中的一项及其是否为标注相关。
type RankedEntity struct {
	Entity string `json:"entity" yaml:"entity"`
	IsGS   bool   `json:"is_gs" yaml:"is_gs"`
}

// QueryResult 是单个查询的诊断信息。
type QueryResult struct {
	ID     int            `json:"id" yaml:"id"`
	Term   string         `json:"term" yaml:"term"`
	Ranked []RankedEntity `json:"ranked" yaml:"ranked"`
	AP     float64        `json:"ap" yaml:"ap"`
}

// SubtaskResult 是一个子任务的评估结果，Score 为 MAP。
type SubtaskResult struct {
	QueryResults []QueryResult `json:"query_results" yaml:"query_results"`
	Score        float64       `json:"score" yaml:"score"`
}

// Result 是整体评估结果：各子任务结果 + 子任务 MAP 的简单平均。
type Result struct {
	Subtasks map[core.Subtask]*SubtaskResult `json:"subtasks" yaml:"subtasks"`
	Score    float64                         `json:"score" yaml:"score"`
}

// Present 按 core.Subtasks 顺序返回有结果的子任务
func (r *Result) Present() []core.Subtask {
	out := make([]core.Subtask, 0, len(r.Subtasks))
	for _, t := range core.Subtasks {
		if _, ok := r.Subtasks[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// NewRand 返回以当前时间为种子的随机源
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// EvaluateQuery 打乱候选副本（避免输入顺序带来的位置偏差），用 ranker 排序，
// 以候选数为 k 计算 AP，并记录带标注的排序结果。
func EvaluateQuery(ctx context.Context, ranker Ranker, subtask core.Subtask, id int, group core.QueryGroup, rng *rand.Rand) (QueryResult, error) {
	if rng == nil {
		rng = NewRand()
	}
	shuffled := make([]core.Candidate, len(group.Candidates))
	copy(shuffled, group.Candidates)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	entities := make([]string, len(shuffled))
	for i, c := range shuffled {
		entities[i] = c.Entity
	}
	ranked, err := ranker.Rank(ctx, core.Query{Subtask: subtask, Text: group.Text}, entities)
	if err != nil {
		return QueryResult{}, fmt.Errorf("rank query %q: %w", group.Text, err)
	}

	gs := group.RelevantEntities()
	gsSet := make(map[string]struct{}, len(gs))
	for _, e := range gs {
		gsSet[e] = struct{}{}
	}
	result := QueryResult{
		ID:     id,
		Term:   group.Text,
		Ranked: make([]RankedEntity, len(ranked)),
		AP:     AveragePrecisionAtK(gs, ranked, len(shuffled)),
	}
	for i, e := range ranked {
		_, ok := gsSet[e]
		result.Ranked[i] = RankedEntity{Entity: e, IsGS: ok}
	}
	return result, nil
}

// EvaluateSubtask 评估一个子任务的所有查询，Score 为平均 AP。
// 没有查询时返回 nil。
func EvaluateSubtask(ctx context.Context, ranker Ranker, subtask core.Subtask, groups []core.QueryGroup, rng *rand.Rand) (*SubtaskResult, error) {
	if len(groups) == 0 {
		return nil, nil
	}
	if rng == nil {
		rng = NewRand()
	}
	res := &SubtaskResult{QueryResults: make([]QueryResult, 0, len(groups))}
	var sum float64
	for id, group := range groups {
		qr, err := EvaluateQuery(ctx, ranker, subtask, id, group, rng)
		if err != nil {
			return nil, err
		}
		res.QueryResults = append(res.QueryResults, qr)
		sum += qr.AP
	}
	res.Score = sum / float64(len(groups))
	return res, nil
}

// Evaluate 按 core.Subtasks 顺序评估 data 中的每个子任务，rng 在子任务间共享。
// 没有查询的子任务不出现在结果中，也不参与整体平均。
func Evaluate(ctx context.Context, ranker Ranker, data core.Dataset, rng *rand.Rand) (*Result, error) {
	if rng == nil {
		rng = NewRand()
	}
	res := &Result{Subtasks: make(map[core.Subtask]*SubtaskResult)}
	var sum float64
	for _, subtask := range data.Present() {
		sr, err := EvaluateSubtask(ctx, ranker, subtask, data[subtask], rng)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", subtask, err)
		}
		if sr == nil {
			continue
		}
		res.Subtasks[subtask] = sr
		sum += sr.Score
	}
	if n := len(res.Subtasks); n > 0 {
		res.Score = sum / float64(n)
	}
	return res, nil
}
