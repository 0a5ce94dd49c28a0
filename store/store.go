// Package store 是实体库的基础设施实现，接口定义在 core 包。
//
// 后端：
//   - SQLiteEntityDB：百科 SQLite 库，直接实现 core.EntityStore
//   - MemoryStore / RedisStore：core.KeyValueStore，经 KVEntityStore 适配为 core.EntityStore
//   - CachedEntityStore：LRU 缓存装饰器
//
// 一般通过 Open(ctx, Options) 按配置构建。
package store

import "github.com/rushteam/baikerank/core"

var (
	_ core.KeyValueStore = (*MemoryStore)(nil)
	_ core.KeyValueStore = (*RedisStore)(nil)
	_ core.EntityStore   = (*KVEntityStore)(nil)
	_ core.EntityStore   = (*SQLiteEntityDB)(nil)
	_ core.EntityStore   = (*CachedEntityStore)(nil)
)
