package api

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// fetchFunc はキャッシュエントリの値をバックエンドから取得する。
type fetchFunc func(ctx context.Context) (any, error)

// entry は1クエリ分のキャッシュ状態。
type entry struct {
	key      string
	endpoint string
	tags     []TagRef
	fetch    fetchFunc

	value     any
	hasValue  bool
	valid     bool
	fetchedAt time.Time
	// gen は無効化のたびに進む世代番号。
	// 取得開始時と完了時で世代が異なれば、結果は保存するが有効にはしない。
	gen uint64

	subs map[uint64]func(any)
}

// cache はクエリキー単位のタグ付きキャッシュ。
// 同一キーの同時読み込みは singleflight で1回の取得にまとめる。
// 購読者のいないエントリは取得から maxAge を過ぎると次の読み込みで再取得する。
// 購読中のエントリはミューテーションによる再取得で更新されるため期限を持たない。
type cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	nextSub uint64
	maxAge  time.Duration // 0 なら期限なし
	now     func() time.Time

	flight   singleflight.Group
	recorder Recorder
}

func newCache(recorder Recorder, maxAge time.Duration) *cache {
	return &cache{
		entries:  make(map[string]*entry),
		maxAge:   maxAge,
		now:      time.Now,
		recorder: recorder,
	}
}

// usable は有効かつ期限内の値を持つかを返す。呼び出し側で mu を保持すること。
func (c *cache) usable(e *entry) bool {
	if !e.valid {
		return false
	}
	if c.maxAge <= 0 || len(e.subs) > 0 {
		return true
	}
	return c.now().Sub(e.fetchedAt) <= c.maxAge
}

// lookup はエントリを取得し、存在しなければ作成する。呼び出し側で mu を保持すること。
func (c *cache) lookup(key, endpoint string, tags []TagRef) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{
			key:      key,
			endpoint: endpoint,
			tags:     tags,
			subs:     make(map[uint64]func(any)),
		}
		c.entries[key] = e
	}
	if e.endpoint == "" {
		e.endpoint = endpoint
		e.tags = tags
	}
	return e
}

// load は有効なキャッシュがあればそれを返し、なければ取得する。
func (c *cache) load(ctx context.Context, key, endpoint string, tags []TagRef, fetch fetchFunc) (any, error) {
	c.mu.Lock()
	e := c.lookup(key, endpoint, tags)
	e.fetch = fetch
	if c.usable(e) {
		v := e.value
		c.mu.Unlock()
		c.recorder.RecordCacheHit(endpoint)
		return v, nil
	}
	c.mu.Unlock()

	c.recorder.RecordCacheMiss(endpoint)
	return c.refresh(ctx, e)
}

// refresh はエントリを再取得する。同一キーの取得が進行中ならその結果を共有する。
func (c *cache) refresh(ctx context.Context, e *entry) (any, error) {
	v, err, _ := c.flight.Do(e.key, func() (any, error) {
		return c.fetchAndStore(ctx, e)
	})
	return v, err
}

func (c *cache) fetchAndStore(ctx context.Context, e *entry) (any, error) {
	c.mu.Lock()
	gen := e.gen
	fetch := e.fetch
	c.mu.Unlock()

	v, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	e.value = v
	e.hasValue = true
	e.valid = e.gen == gen
	e.fetchedAt = c.now()
	subs := make([]func(any), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
	return v, nil
}

// invalidate は tags のいずれかに該当するエントリをすべて失効させ、
// そのうち購読者がいて再取得可能なエントリを返す。
func (c *cache) invalidate(tags []TagRef) []*entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	var refetch []*entry
	for _, e := range c.entries {
		if !matchesAny(tags, e.tags) {
			continue
		}
		e.valid = false
		e.gen++
		// 無効化前に始まった取得に後続の読み込みが合流しないようにする
		c.flight.Forget(e.key)
		if len(e.subs) > 0 && e.fetch != nil {
			refetch = append(refetch, e)
		}
	}
	return refetch
}

// subscribe はエントリの再取得通知を登録し、解除関数を返す。
func (c *cache) subscribe(key string, fn func(any)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.lookup(key, "", nil)
	c.nextSub++
	id := c.nextSub
	e.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(e.subs, id)
	}
}

// fresh はエントリが有効で期限内のキャッシュ値を保持しているかを返す。
func (c *cache) fresh(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return ok && c.usable(e)
}

// subscribed は購読者のいるエントリが1つでもあるかを返す。
func (c *cache) subscribed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if len(e.subs) > 0 {
			return true
		}
	}
	return false
}

func matchesAny(invalidated, provided []TagRef) bool {
	for _, inv := range invalidated {
		for _, p := range provided {
			if inv.Invalidates(p) {
				return true
			}
		}
	}
	return false
}
