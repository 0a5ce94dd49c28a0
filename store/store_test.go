package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/baikerank/core"
)

func TestKVEntityStore_Lookup(t *testing.T) {
	ctx := context.Background()
	es := NewKVEntityStore(NewMemoryStore(), "")
	if err := es.Put(ctx, "北京故事", "一部电影", ""); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	summary, err := es.LookupSummary(ctx, "北京故事")
	if err != nil {
		t.Fatalf("LookupSummary() error = %v", err)
	}
	if summary != "一部电影" {
		t.Errorf("summary = %q, want %q", summary, "一部电影")
	}

	if _, err := es.LookupContent(ctx, "北京故事"); !core.IsNotFound(err) {
		t.Errorf("LookupContent() error = %v, want not found", err)
	}
	if _, err := es.LookupSummary(ctx, "missing"); !core.IsNotFound(err) {
		t.Errorf("LookupSummary(missing) error = %v, want not found", err)
	}
}

func TestMemoryStore_HashDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_ = m.HSet(ctx, "k", "summary", []byte("s"))
	_ = m.HSet(ctx, "k", "content", []byte("c"))

	all, err := m.HGetAll(ctx, "k")
	if err != nil {
		t.Fatalf("HGetAll() error = %v", err)
	}
	if len(all) != 2 || string(all["content"]) != "c" {
		t.Errorf("HGetAll() = %v", all)
	}

	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := m.HGet(ctx, "k", "summary"); !core.IsNotFound(err) {
		t.Errorf("HGet() after Delete error = %v, want not found", err)
	}
}

func TestSQLiteEntityDB(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLiteEntityDB(filepath.Join(t.TempDir(), "baike.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteEntityDB() error = %v", err)
	}
	defer db.Close()

	if err := db.Put(ctx, "全聚德", "北京烤鸭店", "全聚德创建于1864年"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := db.Put(ctx, "空实体", "", ""); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	content, err := db.LookupContent(ctx, "全聚德")
	if err != nil {
		t.Fatalf("LookupContent() error = %v", err)
	}
	if content != "全聚德创建于1864年" {
		t.Errorf("content = %q", content)
	}

	tests := []struct {
		name   string
		entity string
	}{
		{name: "absent row", entity: "不存在"},
		{name: "null column", entity: "空实体"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := db.LookupSummary(ctx, tt.entity); !core.IsNotFound(err) {
				t.Errorf("LookupSummary(%q) error = %v, want not found", tt.entity, err)
			}
		})
	}
}

type countingStore struct {
	core.EntityStore
	calls int
}

func (c *countingStore) LookupSummary(ctx context.Context, entity string) (string, error) {
	c.calls++
	return c.EntityStore.LookupSummary(ctx, entity)
}

func TestCachedEntityStore(t *testing.T) {
	ctx := context.Background()
	kv := NewKVEntityStore(NewMemoryStore(), "")
	_ = kv.Put(ctx, "a", "sa", "")
	_ = kv.Put(ctx, "b", "sb", "")
	inner := &countingStore{EntityStore: kv}
	cached := NewCachedEntityStore(inner, 2)

	for i := 0; i < 3; i++ {
		if s, err := cached.LookupSummary(ctx, "a"); err != nil || s != "sa" {
			t.Fatalf("LookupSummary(a) = %q, %v", s, err)
		}
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1", inner.calls)
	}

	// 不存在的结果也被缓存
	for i := 0; i < 2; i++ {
		if _, err := cached.LookupSummary(ctx, "missing"); !core.IsNotFound(err) {
			t.Fatalf("LookupSummary(missing) error = %v", err)
		}
	}
	if inner.calls != 2 {
		t.Errorf("calls = %d, want 2", inner.calls)
	}

	// 容量为 2，再加入 b 时淘汰最久未访问的 a
	_, _ = cached.LookupSummary(ctx, "b")
	if cached.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cached.Len())
	}
	_, _ = cached.LookupSummary(ctx, "a")
	if inner.calls != 4 {
		t.Errorf("calls = %d, want 4 (a evicted)", inner.calls)
	}
}

func TestOpen_UnsupportedBackend(t *testing.T) {
	if _, _, err := Open(context.Background(), Options{Backend: "mysql"}); err == nil {
		t.Fatal("Open() error = nil, want unsupported backend")
	}
}

func TestOpen_Memory(t *testing.T) {
	es, closeFn, err := Open(context.Background(), Options{Backend: BackendMemory, CacheSize: 10})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer closeFn()
	if _, ok := es.(*CachedEntityStore); !ok {
		t.Errorf("Open() = %T, want *CachedEntityStore", es)
	}
}

func TestOpen_MemorySeedFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "entities.yaml")
	body := "北京故事:\n  summary: 一部电影\n  content: 电影北京故事\n刘德华:\n  summary: 香港演员\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	es, closeFn, err := Open(ctx, Options{Backend: BackendMemory, SeedFile: path})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer closeFn()

	if got, err := es.LookupContent(ctx, "北京故事"); err != nil || got != "电影北京故事" {
		t.Errorf("LookupContent() = %q, %v", got, err)
	}
	if got, err := es.LookupSummary(ctx, "刘德华"); err != nil || got != "香港演员" {
		t.Errorf("LookupSummary() = %q, %v", got, err)
	}
	if _, err := es.LookupContent(ctx, "刘德华"); !core.IsNotFound(err) {
		t.Errorf("LookupContent(刘德华) error = %v, want not found", err)
	}
}

func TestOpen_MemorySeedFileErrors(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := Open(context.Background(), Options{Backend: BackendMemory, SeedFile: filepath.Join(dir, "missing.yaml")}); err == nil {
		t.Error("Open() with missing seed file: error = nil")
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("- not\n- a map\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Open(context.Background(), Options{Backend: BackendMemory, SeedFile: bad}); err == nil {
		t.Error("Open() with malformed seed file: error = nil")
	}
}

func TestMemoryStore_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	if _, err := m.Get(ctx, "k"); !core.IsNotFound(err) {
		t.Fatalf("Get(missing) error = %v, want not found", err)
	}
	if err := m.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, err := m.Get(ctx, "k"); err != nil || string(got) != "v" {
		t.Errorf("Get() = %q, %v", got, err)
	}
}
