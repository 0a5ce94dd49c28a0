package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EntityText 是种子文件中一个实体的文本
type EntityText struct {
	Summary string `yaml:"summary"`
	Content string `yaml:"content"`
}

// LoadSeedFile 读取 YAML 种子文件（实体名 → summary / content），写入 es。
//
//	北京故事:
//	  summary: 一部电影
//	  content: 电影北京故事讲述了……
func LoadSeedFile(ctx context.Context, es *KVEntityStore, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var entities map[string]EntityText
	if err := yaml.Unmarshal(data, &entities); err != nil {
		return 0, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	for name, text := range entities {
		if err := es.Put(ctx, name, text.Summary, text.Content); err != nil {
			return 0, fmt.Errorf("seed entity %q: %w", name, err)
		}
	}
	return len(entities), nil
}
