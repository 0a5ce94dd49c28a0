// Package eval 计算排序质量：AP@K、单查询 / 子任务 / 整体 MAP。
package eval

// AveragePrecisionAtK 计算 AP@K。
//
// predicted 截断到前 k 个（k <= 0 表示全长）；按顺序遍历，
// 位置 i（从 1 开始）上的实体若属于 actual 且未在前缀中出现过，则累加 命中数/i。
// actual 为空时结果为 0。最终除以 min(|actual|, k)。
func AveragePrecisionAtK(actual, predicted []string, k int) float64 {
	if k <= 0 {
		k = len(predicted)
	}
	if len(predicted) > k {
		predicted = predicted[:k]
	}
	if len(actual) == 0 {
		return 0
	}

	relevant := make(map[string]struct{}, len(actual))
	for _, a := range actual {
		relevant[a] = struct{}{}
	}

	var (
		score float64
		hits  float64
		seen  = make(map[string]struct{}, len(predicted))
	)
	for i, p := range predicted {
		_, dup := seen[p]
		seen[p] = struct{}{}
		if _, ok := relevant[p]; ok && !dup {
			hits++
			score += hits / float64(i+1)
		}
	}

	denom := len(actual)
	if k < denom {
		denom = k
	}
	if denom == 0 {
		return 0
	}
	return score / float64(denom)
}
