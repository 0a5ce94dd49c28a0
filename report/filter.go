package report

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/baikerank/core"
	"github.com/rushteam/baikerank/eval"
)

var (
	// celEnv 是共享的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("q", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Filter 是编译好的查询诊断过滤表达式，使用 CEL (Common Expression Language)。
//
// 表达式中的变量 q 包含：
//   - q.phase：阶段，"cv" 或 "heldout"
//   - q.subtask：子任务，如 "movie"
//   - q.id / q.term：查询编号与查询串
//   - q.ap：该查询的 AP
//   - q.candidates / q.relevant：候选数与标注相关数
//   - q.ranked：排序结果列表，元素为 {entity, is_gs}
//   - q.top：排在第一位的实体
//
// 示例：
//   - `q.ap < 0.5 && q.subtask == "movie"`
//   - `q.relevant > 0 && !q.ranked[0].is_gs`
//   - `q.term.contains("北京")`
type Filter struct {
	expr string
	prg  cel.Program
}

// NewFilter 编译表达式；空表达式匹配所有查询。
func NewFilter(expr string) (*Filter, error) {
	f := &Filter{expr: expr}
	if expr == "" {
		return f, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile filter %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program filter %q: %w", expr, err)
	}
	f.prg = prg
	return f, nil
}

// String 返回原始表达式
func (f *Filter) String() string { return f.expr }

// Match 判断一条查询诊断是否满足表达式
func (f *Filter) Match(phase string, subtask core.Subtask, qr eval.QueryResult) (bool, error) {
	if f == nil || f.prg == nil {
		return true, nil
	}
	out, _, err := f.prg.Eval(map[string]interface{}{"q": queryInput(phase, subtask, qr)})
	if err != nil {
		return false, fmt.Errorf("eval filter %q: %w", f.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter %q must return boolean, got %T", f.expr, out.Value())
	}
	return result, nil
}

// Apply 返回满足表达式的查询诊断（保持顺序）
func (f *Filter) Apply(phase string, subtask core.Subtask, results []eval.QueryResult) ([]eval.QueryResult, error) {
	if f == nil || f.prg == nil {
		return results, nil
	}
	var out []eval.QueryResult
	for _, qr := range results {
		ok, err := f.Match(phase, subtask, qr)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, qr)
		}
	}
	return out, nil
}

func queryInput(phase string, subtask core.Subtask, qr eval.QueryResult) map[string]interface{} {
	ranked := make([]interface{}, len(qr.Ranked))
	relevant := 0
	for i, r := range qr.Ranked {
		ranked[i] = map[string]interface{}{"entity": r.Entity, "is_gs": r.IsGS}
		if r.IsGS {
			relevant++
		}
	}
	top := ""
	if len(qr.Ranked) > 0 {
		top = qr.Ranked[0].Entity
	}
	return map[string]interface{}{
		"phase":      phase,
		"subtask":    string(subtask),
		"id":         int64(qr.ID),
		"term":       qr.Term,
		"ap":         qr.AP,
		"candidates": int64(len(qr.Ranked)),
		"relevant":   int64(relevant),
		"ranked":     ranked,
		"top":        top,
	}
}
