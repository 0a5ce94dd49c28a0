package model

// RankModel 是排序阶段的最小抽象：输入具名特征，输出一个可比较的分数。
// Classifier（向量化器 + LR）实现此接口；RankingModel 在其上加了特征抽取。
type RankModel interface {
	Name() string
	Predict(features map[string]float64) (float64, error)
}
