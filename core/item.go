package core

import "sort"

// Item 是排序链路中的统一承载结构：候选实体、分数、特征。
// Score 用于排序决策；Features 保留打分时抽取的特征，便于诊断。
type Item struct {
	ID       string
	Score    float64
	Features map[string]float64
}

func NewItem(id string) *Item {
	return &Item{
		ID:       id,
		Features: make(map[string]float64),
	}
}

// NewItems 按给定顺序为每个实体创建 Item
func NewItems(ids []string) []*Item {
	items := make([]*Item, len(ids))
	for i, id := range ids {
		items[i] = NewItem(id)
	}
	return items
}

// ItemIDs 返回 Item 的实体名（保持顺序）
func ItemIDs(items []*Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it != nil {
			out = append(out, it.ID)
		}
	}
	return out
}

// SortByScore 按分数降序稳定排序：分数相同的保持输入顺序，nil 排在最后。
func SortByScore(items []*Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil {
			return false
		}
		if items[j] == nil {
			return true
		}
		return items[i].Score > items[j].Score
	})
}
