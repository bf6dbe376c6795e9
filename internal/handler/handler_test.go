package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/planit-app/planit/internal/api"
	"github.com/planit-app/planit/internal/eventform"
	"github.com/planit-app/planit/internal/model"
)

func TestResolveError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"api error passes through", model.NewNotFoundError("Group"), http.StatusNotFound, model.ErrCodeNotFound},
		{"wrapped api error", fmt.Errorf("wrap: %w", model.NewRateLimitedError()), http.StatusTooManyRequests, model.ErrCodeRateLimited},
		{"form validation", &eventform.ValidationError{Message: eventform.MsgEndBeforeStart}, http.StatusBadRequest, model.ErrCodeInvalidEvent},
		{"no session", fmt.Errorf("get user: %w", api.ErrNoSession), http.StatusUnauthorized, model.ErrCodeUnauthorized},
		{"non-json success", fmt.Errorf("%w: <html>", api.ErrUnexpectedResponse), http.StatusBadGateway, model.ErrCodeUnexpectedResponse},
		{"network failure", &api.RequestError{Method: "GET", Path: "group", Err: errors.New("connection refused")}, http.StatusServiceUnavailable, model.ErrCodeBackendUnavailable},
		{"backend 401", &api.RequestError{Method: "GET", Path: "group", Status: 401}, http.StatusUnauthorized, model.ErrCodeUnauthorized},
		{"backend 404", &api.RequestError{Method: "GET", Path: "group/9", Status: 404}, http.StatusNotFound, model.ErrCodeNotFound},
		{"backend 500", &api.RequestError{Method: "POST", Path: "group", Status: 500}, http.StatusBadGateway, model.ErrCodeBackendRejected},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, model.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, apiErr := resolveError(tt.err)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if apiErr.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", apiErr.Code, tt.wantCode)
			}
		})
	}
}

func TestResolveError_FormMessageIsShownAsIs(t *testing.T) {
	_, apiErr := resolveError(&eventform.ValidationError{Message: eventform.MsgEndBeforeStart})
	if apiErr.Message != eventform.MsgEndBeforeStart {
		t.Errorf("message = %q, want %q", apiErr.Message, eventform.MsgEndBeforeStart)
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantOK bool
		want   string
	}{
		{"valid", `{"title":"Trip"}`, true, ""},
		{"malformed", `{"title":`, false, "not valid JSON"},
		{"missing required", `{"description":"x"}`, false, "Title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			var dst createGroupRequest
			ok := decodeJSON(w, req, &dst)
			if ok != tt.wantOK {
				t.Fatalf("decodeJSON = %v, want %v", ok, tt.wantOK)
			}
			if ok {
				return
			}
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			body := parseAPIErrorResponse(t, w)
			if !strings.Contains(body["message"], tt.want) {
				t.Errorf("message = %q, want it to contain %q", body["message"], tt.want)
			}
		})
	}
}

func TestRequestSession_Missing_Returns401(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/groups", nil)
	w := httptest.NewRecorder()

	if _, ok := requestSession(w, req); ok {
		t.Fatal("expected no session")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestLoadState_BrokenDataFallsBackToDefault(t *testing.T) {
	s := testSession()
	s.Data = []byte("{broken")

	state := loadState(s)
	if state.IsDarkMode || state.IsSidebarCollapsed || len(state.ExpandedGroups) != 0 {
		t.Errorf("state = %+v, want zero value", state)
	}
}

func TestSaveState_UpdatesSessionData(t *testing.T) {
	store := &mockStateStore{}
	s := testSession()
	state := loadState(s)
	state.SetDarkMode(true)

	if err := saveState(context.Background(), store, s, state); err != nil {
		t.Fatalf("saveState: %v", err)
	}
	if !store.state(t, s.ID).IsDarkMode {
		t.Error("stored state should have dark mode on")
	}
	if !loadState(s).IsDarkMode {
		t.Error("session data should reflect the saved state")
	}
}

func TestSaveState_StoreError(t *testing.T) {
	store := &mockStateStore{
		saveFn: func(ctx context.Context, sessionID string, data []byte) error {
			return errors.New("db down")
		},
	}
	s := testSession()
	if err := saveState(context.Background(), store, s, loadState(s)); err == nil {
		t.Fatal("expected error")
	}
	if len(s.Data) != 0 {
		t.Error("session data should be unchanged on failure")
	}
}
