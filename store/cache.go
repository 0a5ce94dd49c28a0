package store

import (
	"container/list"
	"context"
	"sync"

	"github.com/rushteam/baikerank/core"
)

// CachedEntityStore 是带 LRU 缓存的 EntityStore 装饰器。
// 交叉验证时每一折都会重新抽取特征，同一实体的摘要/正文会被反复查询；
// 缓存同时记住“不存在”的结果，避免对缺失实体反复回源。
type CachedEntityStore struct {
	next    core.EntityStore
	maxSize int

	mu    sync.Mutex
	ll    *list.List
	items map[cacheKey]*list.Element
}

type cacheKey struct {
	field  string
	entity string
}

type cacheEntry struct {
	key      cacheKey
	text     string
	notFound bool
}

// NewCachedEntityStore 创建缓存装饰器，maxSize <= 0 时不限制大小
func NewCachedEntityStore(next core.EntityStore, maxSize int) *CachedEntityStore {
	return &CachedEntityStore{
		next:    next,
		maxSize: maxSize,
		ll:      list.New(),
		items:   make(map[cacheKey]*list.Element),
	}
}

func (c *CachedEntityStore) LookupSummary(ctx context.Context, entity string) (string, error) {
	return c.lookup(ctx, cacheKey{field: FieldSummary, entity: entity}, c.next.LookupSummary)
}

func (c *CachedEntityStore) LookupContent(ctx context.Context, entity string) (string, error) {
	return c.lookup(ctx, cacheKey{field: FieldContent, entity: entity}, c.next.LookupContent)
}

func (c *CachedEntityStore) lookup(
	ctx context.Context,
	key cacheKey,
	fetch func(context.Context, string) (string, error),
) (string, error) {
	if e, ok := c.get(key); ok {
		if e.notFound {
			return "", core.ErrEntityNotFound
		}
		return e.text, nil
	}

	text, err := fetch(ctx, key.entity)
	switch {
	case err == nil:
		c.add(&cacheEntry{key: key, text: text})
	case core.IsNotFound(err):
		c.add(&cacheEntry{key: key, notFound: true})
	}
	return text, err
}

func (c *CachedEntityStore) get(key cacheKey) (*cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry), true
}

func (c *CachedEntityStore) add(e *cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[e.key]; ok {
		el.Value = e
		c.ll.MoveToFront(el)
		return
	}
	c.items[e.key] = c.ll.PushFront(e)

	// 超过最大大小时淘汰最久未访问的条目
	if c.maxSize > 0 && c.ll.Len() > c.maxSize {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

// Len 返回当前缓存条目数
func (c *CachedEntityStore) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Clear 清空缓存
func (c *CachedEntityStore) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[cacheKey]*list.Element)
}

var _ core.EntityStore = (*CachedEntityStore)(nil)
