package store

import (
	"context"
	"fmt"

	"github.com/rushteam/baikerank/core"
)

// Hash 字段名
const (
	FieldSummary = "summary"
	FieldContent = "content"
)

// DefaultEntityKeyPrefix 是实体 Hash 的默认 key 前缀
const DefaultEntityKeyPrefix = "baike:entity:"

// KVEntityStore 将 core.KeyValueStore 适配为 core.EntityStore，采用适配器模式。
//
// 存储布局：Hash key = <prefix><实体名>，field = summary / content。
type KVEntityStore struct {
	kv        core.KeyValueStore
	keyPrefix string
}

// NewKVEntityStore 创建基于 KeyValueStore 的实体库，prefix 为空时使用 DefaultEntityKeyPrefix
func NewKVEntityStore(kv core.KeyValueStore, keyPrefix string) *KVEntityStore {
	if keyPrefix == "" {
		keyPrefix = DefaultEntityKeyPrefix
	}
	return &KVEntityStore{kv: kv, keyPrefix: keyPrefix}
}

func (s *KVEntityStore) Name() string {
	return fmt.Sprintf("kv.%s", s.kv.Name())
}

func (s *KVEntityStore) LookupSummary(ctx context.Context, entity string) (string, error) {
	return s.lookup(ctx, entity, FieldSummary)
}

func (s *KVEntityStore) LookupContent(ctx context.Context, entity string) (string, error) {
	return s.lookup(ctx, entity, FieldContent)
}

func (s *KVEntityStore) lookup(ctx context.Context, entity, field string) (string, error) {
	data, err := s.kv.HGet(ctx, s.keyPrefix+entity, field)
	if err != nil {
		if core.IsNotFound(err) {
			return "", core.ErrEntityNotFound
		}
		return "", fmt.Errorf("lookup %s of %q: %w", field, entity, err)
	}
	return string(data), nil
}

// Put 写入一个实体的摘要与正文；空字符串的字段不写入，查询时视为不存在。
func (s *KVEntityStore) Put(ctx context.Context, entity, summary, content string) error {
	if summary != "" {
		if err := s.kv.HSet(ctx, s.keyPrefix+entity, FieldSummary, []byte(summary)); err != nil {
			return err
		}
	}
	if content != "" {
		if err := s.kv.HSet(ctx, s.keyPrefix+entity, FieldContent, []byte(content)); err != nil {
			return err
		}
	}
	return nil
}

func (s *KVEntityStore) Close() error {
	return s.kv.Close()
}

var _ core.EntityStore = (*KVEntityStore)(nil)
