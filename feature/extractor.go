package feature

import (
	"context"
	"sort"

	"github.com/rushteam/baikerank/core"
)

// Feature 是一个具名特征。多数特征值为 0/1 的存在性指示，计数类特征为整数。
type Feature struct {
	Name  string
	Value float64
}

// Extractor 是特征抽取函数：给定 (查询, 实体) 返回具名特征序列。
//
// 约定：
//   - 特征名以 q.Subtask 为前缀，避免不同子任务的特征冲突
//   - 输出只依赖输入与实体库内容，重复调用结果相同
//   - 实体文本缺失时输出兜底特征（NO_SUMMARY / NO_CONTENT），不返回错误
type Extractor func(ctx context.Context, q core.Query, entity string) []Feature

// ToMap 将特征序列转为 map；重名时保留最后一个值。
func ToMap(features []Feature) map[string]float64 {
	m := make(map[string]float64, len(features))
	for _, f := range features {
		m[f.Name] = f.Value
	}
	return m
}

// Combine 组合多个抽取器：按给定顺序依次调用并拼接输出。
func Combine(extractors ...Extractor) Extractor {
	return func(ctx context.Context, q core.Query, entity string) []Feature {
		var out []Feature
		for _, e := range extractors {
			out = append(out, e(ctx, q, entity)...)
		}
		return out
	}
}

// Names 返回特征序列中出现的特征名（排序去重），便于日志与测试。
func Names(features []Feature) []string {
	seen := make(map[string]struct{}, len(features))
	out := make([]string, 0, len(features))
	for _, f := range features {
		if _, ok := seen[f.Name]; ok {
			continue
		}
		seen[f.Name] = struct{}{}
		out = append(out, f.Name)
	}
	sort.Strings(out)
	return out
}
