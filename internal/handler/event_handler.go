package handler

import (
	"encoding/json"
	"net/http"

	"github.com/planit-app/planit/internal/api"
	"github.com/planit-app/planit/internal/eventform"
	"github.com/planit-app/planit/internal/middleware"
	"github.com/planit-app/planit/internal/model"
	"github.com/planit-app/planit/internal/optional"
)

// EventHandler はカレンダーと予定のHTTPハンドラー。
type EventHandler struct {
	clients    ClientSource
	reconciler *eventform.Reconciler
}

// NewEventHandler はEventHandlerを生成する。
func NewEventHandler(clients ClientSource, reconciler *eventform.Reconciler) *EventHandler {
	return &EventHandler{clients: clients, reconciler: reconciler}
}

// createCalendarRequest はカレンダー作成リクエストのボディ。
type createCalendarRequest struct {
	Name string `json:"name" validate:"required"`
}

// eventsResponse はカレンダー単位の予定一覧。
// calendarId 未指定時は status=skipped で空の一覧を返す。
type eventsResponse struct {
	Status string        `json:"status"`
	Events []model.Event `json:"events"`
}

// formResponse はイベント作成フォームの初期状態。
type formResponse struct {
	Open   bool              `json:"open"`
	Fields eventform.Payload `json:"fields"`
}

// ListCalendars はカレンダー一覧を返す。
// GET /api/calendars
func (h *EventHandler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}

	calendars, err := h.clients.Get(session.ID).GetCalendars(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if calendars == nil {
		calendars = []model.Calendar{}
	}
	writeJSON(w, http.StatusOK, calendars)
}

// CreateCalendar はサインイン中のユーザーのカレンダーを作成する。
// POST /api/calendars
func (h *EventHandler) CreateCalendar(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}

	var req createCalendarRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	client := h.clients.Get(session.ID)
	userID, err := currentUserID(r.Context(), client)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	cal, err := client.CreateCalendar(r.Context(), model.Calendar{UserID: userID, Name: req.Name})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cal)
}

// ListEvents はカレンダーの予定一覧を返す。
// GET /api/events?calendarId=
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}

	calendarID := optional.None[model.ID]()
	if raw := r.URL.Query().Get("calendarId"); raw != "" {
		id, err := model.ParseID(raw)
		if err != nil {
			middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("invalid calendarId"))
			return
		}
		calendarID = optional.Some(id)
	}

	res := h.clients.Get(session.ID).GetEventsByCalendar(r.Context(), calendarID)
	if res.Status == api.StatusError {
		handleServiceError(w, res.Err)
		return
	}

	events := res.Data
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, eventsResponse{Status: res.Status.String(), Events: events})
}

// Form はカレンダーで選択された期間からイベント作成フォームの初期値を返す。
// start と end は両方指定するか両方省略する。
// GET /api/events/form?start=&end=
func (h *EventHandler) Form(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if (start == "") != (end == "") {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("start and end must be given together"))
		return
	}

	modal := eventform.NewModal(h.reconciler)
	if start == "" {
		modal.Open(nil)
	} else {
		modal.Open(&eventform.DateRange{Start: start, End: end})
	}

	writeJSON(w, http.StatusOK, formResponse{Open: modal.IsOpen(), Fields: modal.Fields()})
}

// CreateEvent はフォームの入力値を検証して予定を作成する。
// 省略されたカレンダーIDは既定値になる。
// POST /api/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}

	modal := eventform.NewModal(h.reconciler)
	modal.Open(nil)

	input := modal.Fields()
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("request body is not valid JSON"))
		return
	}
	modal.Edit(func(p *eventform.Payload) { *p = input })

	var payload eventform.Payload
	if err := modal.Submit(func(p eventform.Payload) { payload = p }); err != nil {
		handleServiceError(w, err)
		return
	}

	created, err := h.clients.Get(session.ID).CreateEvent(r.Context(), payload.Event())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateEvent は予定を更新する。入力値の検証は作成時と同じ。
// PUT /api/events/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	input := eventform.Payload{CalendarID: model.DefaultCalendarID}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("request body is not valid JSON"))
		return
	}

	if err := eventform.NewModal(h.reconciler).Validate(input); err != nil {
		handleServiceError(w, err)
		return
	}

	ev := input.Event()
	ev.ID = eventID
	updated, err := h.clients.Get(session.ID).UpdateEvent(r.Context(), ev)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteEvent は予定を削除する。
// DELETE /api/events/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	session, ok := requestSession(w, r)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.clients.Get(session.ID).DeleteEvent(r.Context(), eventID); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
