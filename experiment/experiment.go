package experiment

import (
	"time"

	"github.com/rushteam/baikerank/core"
	"github.com/rushteam/baikerank/eval"
	"github.com/rushteam/baikerank/feature"
)

// Experiment 是一次实验的记录：特征组合、交叉验证结果与留出集评估结果。
type Experiment struct {
	ID         int64        `json:"id" yaml:"id"`
	Timestamp  time.Time    `json:"timestamp" yaml:"timestamp"`
	Extractors []string     `json:"extractors" yaml:"extractors"`
	CV         CVResult     `json:"cv_result,omitempty" yaml:"cv_result,omitempty"`
	HeldOut    *eval.Result `json:"hd_result,omitempty" yaml:"hd_result,omitempty"`
}

// Features 返回逗号拼接的特征组合名，作为实验分组的键
func (e *Experiment) Features() string {
	return feature.JoinNames(e.Extractors)
}

// HeldOutScore 返回留出集上子任务的 MAP
func (e *Experiment) HeldOutScore(t core.Subtask) (float64, bool) {
	if e.HeldOut == nil {
		return 0, false
	}
	sr, ok := e.HeldOut.Subtasks[t]
	if !ok {
		return 0, false
	}
	return sr.Score, true
}

// AvgMAP 是留出集上各子任务 MAP 的简单平均
func (e *Experiment) AvgMAP() float64 {
	if e.HeldOut == nil {
		return 0
	}
	return e.HeldOut.Score
}
