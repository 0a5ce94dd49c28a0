package core

import "fmt"

// Subtask 是查询所属的领域。特征名都以 Subtask 为前缀，避免不同领域的特征互相污染。
type Subtask string

const (
	SubtaskCelebrity  Subtask = "celebrity"
	SubtaskMovie      Subtask = "movie"
	SubtaskRestaurant Subtask = "restaurant"
	SubtaskTVShow     Subtask = "tvShow"
)

// Subtasks 是固定的子任务顺序，所有按子任务的遍历都使用此顺序。
var Subtasks = []Subtask{SubtaskCelebrity, SubtaskMovie, SubtaskRestaurant, SubtaskTVShow}

// ParseSubtask 解析子任务名
func ParseSubtask(s string) (Subtask, error) {
	for _, t := range Subtasks {
		if string(t) == s {
			return t, nil
		}
	}
	return "", NewDomainError(ModuleData, ErrorCodeInvalidInput, fmt.Sprintf("unknown subtask %q (supported: %v)", s, Subtasks))
}

// Query 是一次查询：子任务 + 原始查询串。
type Query struct {
	Subtask Subtask
	Text    string
}

// LabelUnknown 表示测试/预测数据中未知的相关性。
const LabelUnknown = -1

// Candidate 是查询的一个候选实体及其相关性标注（0/1 或 LabelUnknown）。
type Candidate struct {
	Entity string
	Label  int
}

// Relevant 是否为标注相关的候选
func (c Candidate) Relevant() bool { return c.Label == 1 }

// QueryGroup 是一条数据行：查询串及其候选列表。
type QueryGroup struct {
	Text       string
	Candidates []Candidate
}

// Entities 返回候选实体名（保持顺序）
func (g QueryGroup) Entities() []string {
	out := make([]string, len(g.Candidates))
	for i, c := range g.Candidates {
		out[i] = c.Entity
	}
	return out
}

// RelevantEntities 返回标注为相关的实体（保持顺序）
func (g QueryGroup) RelevantEntities() []string {
	var out []string
	for _, c := range g.Candidates {
		if c.Relevant() {
			out = append(out, c.Entity)
		}
	}
	return out
}

// Dataset 是按子任务分组的数据。
type Dataset map[Subtask][]QueryGroup

// Present 按 Subtasks 顺序返回数据中出现的子任务
func (d Dataset) Present() []Subtask {
	out := make([]Subtask, 0, len(d))
	for _, t := range Subtasks {
		if _, ok := d[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// NumQueries 返回所有子任务的查询总数
func (d Dataset) NumQueries() int {
	n := 0
	for _, groups := range d {
		n += len(groups)
	}
	return n
}
