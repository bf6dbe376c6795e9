package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/planit-app/planit/internal/api"
	"github.com/planit-app/planit/internal/middleware"
	"github.com/planit-app/planit/internal/model"
	"github.com/planit-app/planit/internal/view"
)

// streamKeys はグループ画面が依存するクエリ。いずれかが再取得されると画面を送り直す。
var streamKeys = []string{api.KeyAuthUser, api.KeyUsers, api.KeyGroups, api.KeyGroupMembers}

const defaultHeartbeat = 25 * time.Second

// StreamHandler はServer-Sent Eventsでグループ画面の更新を配信する。
type StreamHandler struct {
	clients   ClientSource
	sessions  middleware.SessionFinder
	views     *view.Builder
	logger    *slog.Logger
	heartbeat time.Duration
}

// NewStreamHandler はStreamHandlerを生成する。heartbeat が0以下の場合は25秒。
func NewStreamHandler(clients ClientSource, sessions middleware.SessionFinder, views *view.Builder, logger *slog.Logger, heartbeat time.Duration) *StreamHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &StreamHandler{
		clients:   clients,
		sessions:  sessions,
		views:     views,
		logger:    logger,
		heartbeat: heartbeat,
	}
}

// Groups はグループ画面を送信し、以後は購読中のクエリが再取得されるたびに送り直す。
// GET /api/stream
func (h *StreamHandler) Groups(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}

	rc := http.NewResponseController(w)
	// 接続中はサーバーの WriteTimeout を適用しない
	_ = rc.SetWriteDeadline(time.Time{})
	ctx := r.Context()
	client := h.clients.Get(session.ID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// 初回の組み立てでキャッシュを満たしてから購読し、購読後に送信する
	first := h.views.GroupsPage(ctx, client, loadState(session))

	changed := make(chan struct{}, 1)
	notify := func(any) {
		select {
		case changed <- struct{}{}:
		default:
		}
	}
	for _, key := range streamKeys {
		cancel := client.Subscribe(key, notify)
		defer cancel()
	}

	if err := h.push(w, rc, first); err != nil {
		h.logger.Warn("failed to start event stream", slog.String("error", err.Error()))
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-changed:
			page := h.views.GroupsPage(ctx, client, loadState(h.reloadSession(ctx, session)))
			if err := h.push(w, rc, page); err != nil {
				h.logger.Debug("event stream closed", slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

// reloadSession は他のリクエストで更新されたUI状態を反映するためにセッションを読み直す。
// 読み直せない場合は手元のセッションを使う。
func (h *StreamHandler) reloadSession(ctx context.Context, session *model.Session) *model.Session {
	latest, err := h.sessions.FindByID(ctx, session.ID)
	if err != nil || latest == nil {
		return session
	}
	return latest
}

func (h *StreamHandler) push(w http.ResponseWriter, rc *http.ResponseController, page view.GroupsPage) error {
	data, err := json.Marshal(page)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: groups\ndata: %s\n\n", data); err != nil {
		return err
	}
	return rc.Flush()
}
