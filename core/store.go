package core

import "context"

// EntityStore 是实体库的领域接口：按实体名查询摘要与正文。
//
// 实体不存在或没有对应字段时返回 ErrEntityNotFound（用 IsNotFound 判断）。
// 实现需支持并发读：交叉验证的各折会同时查询。
//
// 实现：
//   - store.SQLiteEntityDB：百科 SQLite 库（entities 表）
//   - store.KVEntityStore：基于 KeyValueStore（Memory / Redis）的 Hash 布局
//   - store.CachedEntityStore：带 LRU 缓存的装饰器
type EntityStore interface {
	LookupSummary(ctx context.Context, entity string) (string, error)
	LookupContent(ctx context.Context, entity string) (string, error)
}

// Store 是 KV 存储的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 领域层不依赖基础设施层
type Store interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// Get 读取单个 key 的值，不存在时返回 ErrStoreNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入单个 key-value（不过期）
	Set(ctx context.Context, key string, value []byte) error

	// Delete 删除单个 key
	Delete(ctx context.Context, key string) error

	// Close 关闭连接/释放资源
	Close() error
}

// KeyValueStore 是 Store 的扩展接口，支持 Hash 操作。
// 实体文本按 Hash 存放：key 为实体，field 为 summary / content。
type KeyValueStore interface {
	Store

	// HGet 读取 Hash 字段，不存在时返回 ErrStoreNotFound
	HGet(ctx context.Context, key, field string) ([]byte, error)

	// HSet 写入 Hash 字段
	HSet(ctx context.Context, key, field string, value []byte) error

	// HGetAll 读取整个 Hash
	HGetAll(ctx context.Context, key string) (map[string][]byte, error)
}
