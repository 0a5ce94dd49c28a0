package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/baikerank/core"
	"github.com/rushteam/baikerank/eval"
	"github.com/rushteam/baikerank/experiment"
)

// 诊断所属的阶段
const (
	PhaseCV      = "cv"
	PhaseHeldOut = "heldout"
)

// Summary 是渲染用的实验摘要：交叉验证的 (均值, 标准差)、留出集分数以及逐查询诊断。
type Summary struct {
	ID         int64               `json:"id" yaml:"id"`
	Timestamp  time.Time           `json:"timestamp" yaml:"timestamp"`
	Extractors []string            `json:"extractors" yaml:"extractors"`
	CV         experiment.CVResult `json:"cv_result" yaml:"cv_result"`
	HeldOut    *eval.Result        `json:"hd_result" yaml:"hd_result"`
}

// FromExperiment 由实验记录构建摘要
func FromExperiment(e *experiment.Experiment) *Summary {
	return &Summary{
		ID:         e.ID,
		Timestamp:  e.Timestamp,
		Extractors: e.Extractors,
		CV:         e.CV,
		HeldOut:    e.HeldOut,
	}
}

func subtaskHeaders() []string {
	out := make([]string, len(core.Subtasks))
	for i, t := range core.Subtasks {
		out[i] = string(t)
	}
	return out
}

// CVTable 返回交叉验证结果表，每列一个子任务，格式 均值+-标准差；无结果为 "-"
func (s *Summary) CVTable() *Table {
	row := make([]string, len(core.Subtasks))
	for i, t := range core.Subtasks {
		row[i] = "-"
		if r, ok := s.CV[t]; ok {
			row[i] = formatMeanStd(r.Mean, r.Std)
		}
	}
	return &Table{Headers: subtaskHeaders(), Rows: [][]string{row}}
}

// HeldOutTable 返回留出集结果表
func (s *Summary) HeldOutTable() *Table {
	row := make([]string, len(core.Subtasks))
	for i, t := range core.Subtasks {
		row[i] = "-"
		if s.HeldOut == nil {
			continue
		}
		if r, ok := s.HeldOut.Subtasks[t]; ok {
			row[i] = formatScore(r.Score)
		}
	}
	return &Table{Headers: subtaskHeaders(), Rows: [][]string{row}}
}

// WriteText 以终端表格写出摘要
func WriteText(w io.Writer, s *Summary) error {
	if _, err := fmt.Fprintln(w, "Cross validation:"); err != nil {
		return err
	}
	if err := s.CVTable().Render(w); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "\nHeld-out set:"); err != nil {
		return err
	}
	return s.HeldOutTable().Render(w)
}

// ExperimentsTable 返回实验列表（每个特征组合最近一次）
func ExperimentsTable(rows []experiment.Summary) *Table {
	headers := []string{"ID", "Time", "Features", "MAP"}
	for _, t := range core.Subtasks {
		headers = append(headers, string(t))
	}
	t := &Table{Headers: headers}
	for _, r := range rows {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			r.Features,
			formatScore(r.AvgMAP),
		}
		for _, st := range core.Subtasks {
			if v, ok := r.Scores[st]; ok {
				row = append(row, formatScore(v))
			} else {
				row = append(row, "-")
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// WriteJSON 以缩进 JSON 导出摘要
func WriteJSON(w io.Writer, s *Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}

// WriteYAML 以 YAML 导出摘要
func WriteYAML(w io.Writer, s *Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}
	return enc.Close()
}
