package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rushteam/baikerank/core"
)

// 支持的实体库后端
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// SupportedBackends 返回支持的后端列表，用于配置校验与错误提示。
func SupportedBackends() []string {
	return []string{BackendSQLite, BackendRedis, BackendMemory}
}

// Options 是实体库的构建参数（对应配置文件中的 entity_store 段）。
type Options struct {
	Backend   string `yaml:"backend"`    // sqlite / redis / memory
	DSN       string `yaml:"dsn"`        // sqlite：数据库文件路径
	Addr      string `yaml:"addr"`       // redis：地址
	DB        int    `yaml:"db"`         // redis：库编号
	KeyPrefix string `yaml:"key_prefix"` // redis / memory：实体 Hash 前缀
	SeedFile  string `yaml:"seed_file"`  // memory：启动时载入的实体文本（YAML）
	CacheSize int    `yaml:"cache_size"` // >0 时包一层 LRU 缓存
}

// Open 按 Options 构建 EntityStore。返回的 close 函数释放底层连接。
//
// 实体库由顶层驱动构建一次，再注入到需要查询的组件中。
func Open(ctx context.Context, opts Options) (core.EntityStore, func() error, error) {
	var (
		es      core.EntityStore
		closeFn func() error
	)
	switch opts.Backend {
	case BackendSQLite, "":
		db, err := OpenSQLiteEntityDB(opts.DSN)
		if err != nil {
			return nil, nil, err
		}
		es, closeFn = db, db.Close
	case BackendRedis:
		rs, err := NewRedisStore(ctx, opts.Addr, opts.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis %s: %w", opts.Addr, err)
		}
		kv := NewKVEntityStore(rs, opts.KeyPrefix)
		es, closeFn = kv, kv.Close
	case BackendMemory:
		kv := NewKVEntityStore(NewMemoryStore(), opts.KeyPrefix)
		if opts.SeedFile == "" {
			slog.Warn("memory entity store has no seed_file, summary and content features will all fall back")
		} else {
			n, err := LoadSeedFile(ctx, kv, opts.SeedFile)
			if err != nil {
				return nil, nil, err
			}
			slog.Info("memory entity store seeded", "path", opts.SeedFile, "entities", n)
		}
		es, closeFn = kv, kv.Close
	default:
		return nil, nil, fmt.Errorf("unsupported entity store backend %q (supported: %v)", opts.Backend, SupportedBackends())
	}

	if opts.CacheSize > 0 {
		es = NewCachedEntityStore(es, opts.CacheSize)
	}
	slog.Debug("entity store opened", "backend", opts.Backend, "cache_size", opts.CacheSize)
	return es, closeFn, nil
}
