package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/rushteam/baikerank/core"
	"github.com/rushteam/baikerank/feature"
)

const artifactVersion = 1

// artifact 是模型文件的内容（gzip 压缩的 JSON）。
// 只保存抽取器名称，不保存抽取逻辑本身。
type artifact struct {
	Version      int       `json:"version"`
	Extractors   []string  `json:"extractors"`
	FeatureNames []string  `json:"feature_names"`
	Bias         float64   `json:"bias"`
	Weights      []float64 `json:"weights"`
}

// Save 将模型写入 w
func (m *RankingModel) Save(w io.Writer) error {
	zw := gzip.NewWriter(w)
	a := artifact{
		Version:      artifactVersion,
		Extractors:   m.names,
		FeatureNames: m.classifier.Vectorizer.names,
		Bias:         m.classifier.LR.Bias,
		Weights:      m.classifier.LR.Weights,
	}
	if err := json.NewEncoder(zw).Encode(&a); err != nil {
		_ = zw.Close()
		return fmt.Errorf("encode model: %w", err)
	}
	return zw.Close()
}

// SaveFile 将模型写入文件
func (m *RankingModel) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	if err := m.Save(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Load 从 r 读取模型，并通过 reg 按名称重建抽取器。
// reg 中缺少所需名称时返回 ErrUnknownExtractor。
func Load(r io.Reader, reg *feature.Registry) (*RankingModel, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer zr.Close()

	var a artifact
	if err := json.NewDecoder(zr).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if a.Version != artifactVersion {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
			fmt.Sprintf("model: unsupported artifact version %d", a.Version))
	}
	if len(a.FeatureNames) != len(a.Weights) {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
			fmt.Sprintf("model: %d feature names but %d weights", len(a.FeatureNames), len(a.Weights)))
	}

	extractor, err := reg.BuildExtractor(a.Extractors)
	if err != nil {
		return nil, err
	}
	classifier := &Classifier{
		Vectorizer: NewVectorizer(a.FeatureNames),
		LR:         &LRModel{Bias: a.Bias, Weights: a.Weights},
	}
	return newRankingModel(a.Extractors, extractor, classifier), nil
}

// LoadFile 从文件读取模型
func LoadFile(path string, reg *feature.Registry) (*RankingModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer f.Close()
	return Load(f, reg)
}
