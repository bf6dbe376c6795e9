package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/planit-app/planit/internal/api"
	"github.com/planit-app/planit/internal/groupview"
	"github.com/planit-app/planit/internal/middleware"
	"github.com/planit-app/planit/internal/model"
	"github.com/planit-app/planit/internal/optional"
	"github.com/planit-app/planit/internal/view"
)

// GroupHandler はグループ画面とメンバー管理のHTTPハンドラー。
type GroupHandler struct {
	clients ClientSource
	store   StateStore
	views   *view.Builder
	logger  *slog.Logger
}

// NewGroupHandler はGroupHandlerを生成する。
func NewGroupHandler(clients ClientSource, store StateStore, views *view.Builder, logger *slog.Logger) *GroupHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GroupHandler{clients: clients, store: store, views: views, logger: logger}
}

// createGroupRequest はグループ作成リクエストのボディ。
type createGroupRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// addMemberRequest はメンバー追加リクエストのボディ。
// 空白チェックはフォーム側で行うため validate タグは付けない。
type addMemberRequest struct {
	Email string `json:"email"`
}

// addMemberResponse はメンバー追加成功時のレスポンス。
type addMemberResponse struct {
	Message string `json:"message"`
}

// Page はグループ画面のビューモデルを返す。
// GET /api/groups
func (h *GroupHandler) Page(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}
	client := h.clients.Get(session.ID)
	writeJSON(w, http.StatusOK, h.views.GroupsPage(r.Context(), client, loadState(session)))
}

// CreateGroup はサインイン中のユーザーを作成者としてグループを作成する。
// POST /api/groups
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}

	var req createGroupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	client := h.clients.Get(session.ID)
	userID, err := currentUserID(r.Context(), client)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	group, err := client.CreateGroup(r.Context(), api.CreateGroupInput{
		Title:       req.Title,
		Description: req.Description,
		UserID:      userID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, group)
}

// DeleteGroup はグループを削除する。
// DELETE /api/groups/{id}
func (h *GroupHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}
	groupID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.clients.Get(session.ID).DeleteGroup(r.Context(), groupID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleExpanded はグループの展開状態を切り替え、更新後のグループ画面を返す。
// PUT /api/groups/{id}/expanded
func (h *GroupHandler) ToggleExpanded(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}
	groupID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	state := loadState(session)
	state.ToggleGroup(groupID)
	if err := saveState(r.Context(), h.store, session, state); err != nil {
		handleServiceError(w, err)
		return
	}

	client := h.clients.Get(session.ID)
	writeJSON(w, http.StatusOK, h.views.GroupsPage(r.Context(), client, state))
}

// ToggleAddMember はメンバー追加サブフォームを開閉し、更新後のグループ画面を返す。
// PUT /api/groups/{id}/add-member
func (h *GroupHandler) ToggleAddMember(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}
	groupID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	state := loadState(session)
	state.AddMember.Toggle(groupID)
	if err := saveState(r.Context(), h.store, session, state); err != nil {
		handleServiceError(w, err)
		return
	}

	client := h.clients.Get(session.ID)
	writeJSON(w, http.StatusOK, h.views.GroupsPage(r.Context(), client, state))
}

// AddMember はメールアドレスでメンバーを追加する。
// サブフォームが閉じている場合は開いてから送信する。
// POST /api/groups/{id}/members
func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}
	groupID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req addMemberRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	state := loadState(session)
	if !state.AddMember.IsOpenFor(groupID) {
		state.AddMember.Toggle(groupID)
	}
	state.AddMember.Email = req.Email

	client := h.clients.Get(session.ID)
	submitErr := state.AddMember.Submit(r.Context(), client, groupID, h.logger)

	if err := saveState(r.Context(), h.store, session, state); err != nil {
		h.logger.Error("failed to save add-member form", slog.String("error", err.Error()))
	}

	switch {
	case submitErr == nil:
		writeJSON(w, http.StatusOK, addMemberResponse{Message: state.AddMember.Message})
	case errors.Is(submitErr, groupview.ErrBlankEmail):
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  groupview.MsgEnterEmail,
			Category: "validation",
			Action:   "Enter the email address of the person to add.",
		})
	default:
		status, apiErr := resolveError(submitErr)
		failed := *apiErr
		failed.Message = groupview.MsgAddFailed
		middleware.WriteErrorResponse(w, status, &failed)
	}
}

// RemoveMember はグループからメンバーを外す。
// DELETE /api/groups/{id}/members/{memberId}
func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}
	groupID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	memberID, ok := parseIDParam(w, r, "memberId")
	if !ok {
		return
	}

	if err := h.clients.Get(session.ID).RemoveMember(r.Context(), groupID, memberID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Members はグループのメンバー詳細を返す。
// GET /api/groups/{id}/members
func (h *GroupHandler) Members(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}
	groupID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	res := h.clients.Get(session.ID).GetMembersByGroup(r.Context(), optional.Some(groupID))
	if res.Status == api.StatusError {
		handleServiceError(w, res.Err)
		return
	}

	members := res.Data
	if members == nil {
		members = []model.GroupMemberDetail{}
	}
	writeJSON(w, http.StatusOK, members)
}
