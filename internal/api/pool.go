package api

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// pooledClient はセッション用Clientと最終利用時刻を保持する。
type pooledClient struct {
	client   *Client
	lastUsed time.Time
}

// Pool はBFFセッションごとにキャッシュを分離したClientを管理する。
// 一定時間利用されなかったClientは破棄される。
type Pool struct {
	base    *Client
	idleTTL time.Duration
	now     func() time.Time

	mu      sync.Mutex
	clients map[string]*pooledClient
}

// NewPool は新しいPoolを生成する。base のトランスポートを全Clientで共有する。
func NewPool(base *Client, idleTTL time.Duration) *Pool {
	return &Pool{
		base:    base,
		idleTTL: idleTTL,
		now:     time.Now,
		clients: make(map[string]*pooledClient),
	}
}

// Get はセッションIDに対応するClientを返す。無ければ作成する。
func (p *Pool) Get(sessionID string) *Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	pc, ok := p.clients[sessionID]
	if !ok {
		pc = &pooledClient{client: p.base.Fork()}
		p.clients[sessionID] = pc
	}
	pc.lastUsed = p.now()
	return pc.client
}

// Evict はセッションのClientを破棄する。サインアウト時に呼ぶ。
func (p *Pool) Evict(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.clients, sessionID)
}

// Len は管理中のClient数を返す。
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

// Sweep はアイドル時間が idleTTL を超えたClientを破棄し、破棄した数を返す。
// 購読中のエントリを持つClientはストリームが保持しているため破棄しない。
func (p *Pool) Sweep() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	removed := 0
	for id, pc := range p.clients {
		if now.Sub(pc.lastUsed) > p.idleTTL && !pc.client.cache.subscribed() {
			delete(p.clients, id)
			removed++
		}
	}
	return removed
}

// Run は ctx が終了するまで interval ごとに Sweep を実行する。
func (p *Pool) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := p.Sweep(); n > 0 {
				p.base.logger.Info("アイドル状態のAPIクライアントを破棄しました",
					slog.Int("removed", n),
					slog.Int("remaining", p.Len()),
				)
			}
		case <-ctx.Done():
			return
		}
	}
}
