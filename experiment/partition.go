// Package experiment 负责 K 折交叉验证、实验记录及其持久化。
package experiment

import (
	"fmt"
	"math/rand"

	"github.com/rushteam/baikerank/core"
)

// Fold 是一折的训练 / 测试数据。
type Fold struct {
	Index int
	Train core.Dataset
	Test  core.Dataset
}

// Partition 把 data 切分为 folds 折。
//
// 每个子任务（按 core.Subtasks 顺序）用同一个以 seed 初始化的随机源打乱副本，
// 第 i 片为 [i*L/K, (i+1)*L/K)，整数运算从左到右求值。
// 第 i 折的测试集为第 i 片，训练集为其余各片按折序拼接。
func Partition(data core.Dataset, folds int, seed int64) ([]Fold, error) {
	if folds < 1 {
		return nil, core.NewDomainError(core.ModuleExperiment, core.ErrorCodeInvalidInput,
			fmt.Sprintf("experiment: fold count must be positive, got %d", folds))
	}

	rng := rand.New(rand.NewSource(seed))
	subtasks := data.Present()
	slices := make(map[core.Subtask][][]core.QueryGroup, len(subtasks))
	for _, t := range subtasks {
		shuffled := make([]core.QueryGroup, len(data[t]))
		copy(shuffled, data[t])
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		l := len(shuffled)
		parts := make([][]core.QueryGroup, folds)
		for i := 0; i < folds; i++ {
			start := i * l / folds
			end := (i + 1) * l / folds
			parts[i] = shuffled[start:end]
		}
		slices[t] = parts
	}

	out := make([]Fold, folds)
	for i := 0; i < folds; i++ {
		train := make(core.Dataset, len(subtasks))
		test := make(core.Dataset, len(subtasks))
		for _, t := range subtasks {
			var groups []core.QueryGroup
			for j := 0; j < folds; j++ {
				if j != i {
					groups = append(groups, slices[t][j]...)
				}
			}
			train[t] = groups
			test[t] = append([]core.QueryGroup(nil), slices[t][i]...)
		}
		out[i] = Fold{Index: i, Train: train, Test: test}
	}
	return out, nil
}
