package handler

import (
	"net/http"

	"github.com/planit-app/planit/internal/model"
)

// RecordHandler は通知・テンプレート・積立計画のHTTPハンドラー。
// いずれもサインイン中のユーザーに紐づけて作成する。
type RecordHandler struct {
	clients ClientSource
}

// NewRecordHandler はRecordHandlerを生成する。
func NewRecordHandler(clients ClientSource) *RecordHandler {
	return &RecordHandler{clients: clients}
}

type createNotificationRequest struct {
	Message string `json:"message" validate:"required"`
}

type createTemplateRequest struct {
	Name    string `json:"name" validate:"required"`
	Content string `json:"content"`
}

type createSavingPlanRequest struct {
	Name          string  `json:"name" validate:"required"`
	TargetAmount  float64 `json:"targetAmount" validate:"gt=0"`
	CurrentAmount float64 `json:"currentAmount" validate:"gte=0"`
	Deadline      string  `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
}

// ListNotifications は通知一覧を返す。
// GET /api/notifications
func (h *RecordHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}
	items, err := h.clients.Get(session.ID).GetNotifications(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if items == nil {
		items = []model.Notification{}
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateNotification は通知を作成する。
// POST /api/notifications
func (h *RecordHandler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}
	var req createNotificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	client := h.clients.Get(session.ID)
	userID, err := currentUserID(r.Context(), client)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	created, err := client.CreateNotification(r.Context(), model.Notification{UserID: userID, Message: req.Message})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListTemplates はテンプレート一覧を返す。
// GET /api/templates
func (h *RecordHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}
	items, err := h.clients.Get(session.ID).GetTemplates(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if items == nil {
		items = []model.Template{}
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateTemplate はテンプレートを作成する。
// POST /api/templates
func (h *RecordHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}
	var req createTemplateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	client := h.clients.Get(session.ID)
	userID, err := currentUserID(r.Context(), client)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	created, err := client.CreateTemplate(r.Context(), model.Template{
		UserID:  userID,
		Name:    req.Name,
		Content: req.Content,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListSavingPlans は積立計画一覧を返す。
// GET /api/saving-plans
func (h *RecordHandler) ListSavingPlans(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}
	items, err := h.clients.Get(session.ID).GetSavingPlans(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if items == nil {
		items = []model.SavingPlan{}
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateSavingPlan は積立計画を作成する。
// POST /api/saving-plans
func (h *RecordHandler) CreateSavingPlan(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}
	var req createSavingPlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	client := h.clients.Get(session.ID)
	userID, err := currentUserID(r.Context(), client)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	created, err := client.CreateSavingPlan(r.Context(), model.SavingPlan{
		UserID:        userID,
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Deadline:      req.Deadline,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
