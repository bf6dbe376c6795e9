package handler

import (
	"log/slog"
	"net/http"

	"github.com/planit-app/planit/internal/view"
)

// UIHandler はナビゲーションバーとUI状態のHTTPハンドラー。
type UIHandler struct {
	clients ClientSource
	store   StateStore
	views   *view.Builder
}

// NewUIHandler はUIHandlerを生成する。
func NewUIHandler(clients ClientSource, store StateStore, views *view.Builder) *UIHandler {
	return &UIHandler{clients: clients, store: store, views: views}
}

// updateUIRequest はUI状態更新リクエストのボディ。
// 値の指定とトグルのどちらでも更新できる。
type updateUIRequest struct {
	IsSidebarCollapsed *bool `json:"isSidebarCollapsed"`
	IsDarkMode         *bool `json:"isDarkMode"`
	ToggleSidebar      bool  `json:"toggleSidebar"`
	ToggleDarkMode     bool  `json:"toggleDarkMode"`
}

// uiResponse はUI状態のAPIレスポンス。
type uiResponse struct {
	IsSidebarCollapsed bool `json:"isSidebarCollapsed"`
	IsDarkMode         bool `json:"isDarkMode"`
}

// Navbar はナビゲーションバーのビューモデルを返す。
// GET /api/navbar
func (h *UIHandler) Navbar(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}
	client := h.clients.Get(session.ID)
	writeJSON(w, http.StatusOK, h.views.Navbar(r.Context(), client, loadState(session)))
}

// UpdateUI はサイドバーとダークモードの状態を更新する。
// PUT /api/ui
func (h *UIHandler) UpdateUI(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}

	var req updateUIRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	state := loadState(session)
	if req.IsSidebarCollapsed != nil {
		state.SetSidebarCollapsed(*req.IsSidebarCollapsed)
	}
	if req.ToggleSidebar {
		state.ToggleSidebar()
	}
	if req.IsDarkMode != nil {
		state.SetDarkMode(*req.IsDarkMode)
	}
	if req.ToggleDarkMode {
		state.ToggleDarkMode()
	}

	if err := saveState(r.Context(), h.store, session, state); err != nil {
		slog.Error("failed to save ui state", slog.String("error", err.Error()))
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, uiResponse{
		IsSidebarCollapsed: state.IsSidebarCollapsed,
		IsDarkMode:         state.IsDarkMode,
	})
}

// About は静的なAbout画面を返す。認証不要。
// GET /api/about
func About(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, view.AboutPage())
}
