package model

import "sort"

// SparseVector 是按下标升序排列的稀疏向量。
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Vectorizer 把具名特征映射为固定维度的稀疏向量。
// 词表在训练数据上拟合，按特征名字典序编号；打分时未见过的特征名直接忽略。
type Vectorizer struct {
	names []string
	index map[string]int
}

// FitVectorizer 在训练样本的特征名上拟合词表
func FitVectorizer(rows []map[string]float64) *Vectorizer {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for name := range row {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return NewVectorizer(names)
}

// NewVectorizer 用已排好序的词表构建（用于模型加载）
func NewVectorizer(names []string) *Vectorizer {
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}
	return &Vectorizer{names: names, index: index}
}

// Dim 返回向量维度
func (v *Vectorizer) Dim() int { return len(v.names) }

// FeatureNames 返回词表（下标顺序）
func (v *Vectorizer) FeatureNames() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

// Transform 将具名特征转为稀疏向量，未知特征名被忽略（等价于填 0）。
func (v *Vectorizer) Transform(features map[string]float64) SparseVector {
	vec := SparseVector{
		Indices: make([]int, 0, len(features)),
		Values:  make([]float64, 0, len(features)),
	}
	for name := range features {
		if i, ok := v.index[name]; ok {
			vec.Indices = append(vec.Indices, i)
		}
	}
	sort.Ints(vec.Indices)
	for _, i := range vec.Indices {
		vec.Values = append(vec.Values, features[v.names[i]])
	}
	return vec
}
