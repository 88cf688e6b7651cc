// Package linkcache は処理済みリンクの有界インプロセスキャッシュを提供する。
// (source_id, link) の組を固定上限まで保持し、上限超過時は最も古い
// エントリから追い出す。プロセスの生存期間のみ有効で、再起動でリセットされる。
// 永続ストアへの照会を省くための補助であり、真実の源は常にデータベース側。
package linkcache

import (
	"container/list"
	"sync"
)

// DefaultMaxSize はキャッシュサイズのデフォルト上限。
const DefaultMaxSize = 1000

// Cache は (source_id, link) の有界キャッシュ。
// モジュールレベルの可変状態を持たず、パイプラインに注入して使用する。
type Cache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*list.Element
	order   *list.List // 挿入順。先頭が最も古い
}

// New は指定された上限サイズのCacheを生成する。
// maxSizeが0以下の場合はDefaultMaxSizeを使用する。
func New(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Cache{
		maxSize: maxSize,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Contains は (sourceID, link) がキャッシュに存在するかを返す。
func (c *Cache) Contains(sourceID, link string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[key(sourceID, link)]
	return ok
}

// Add は (sourceID, link) をキャッシュに追加する。
// 既存のエントリは位置を変えない。上限超過時は最古のエントリを追い出す。
func (c *Cache) Add(sourceID, link string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(sourceID, link)
	if _, ok := c.entries[k]; ok {
		return
	}

	c.entries[k] = c.order.PushBack(k)

	if c.order.Len() > c.maxSize {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(string))
	}
}

// Len は現在のエントリ数を返す。
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.order.Len()
}

func key(sourceID, link string) string {
	return sourceID + "|" + link
}
