package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/planit-app/planit/internal/model"
)

func TestRecordHandler_CreateSavingPlan(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"name":"Trip fund","targetAmount":500,"deadline":"2024-12-31"}`, http.StatusCreated},
		{"missing name", `{"targetAmount":500}`, http.StatusBadRequest},
		{"zero target", `{"name":"Trip fund","targetAmount":0}`, http.StatusBadRequest},
		{"bad deadline", `{"name":"Trip fund","targetAmount":10,"deadline":"31/12/2024"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.backend.withAlice()
			env.backend.handleJSON("POST /saving-plans", func() any {
				return model.SavingPlan{ID: 1, UserID: 7, Name: "Trip fund", TargetAmount: 500}
			})
			h := NewRecordHandler(env.pool)

			req := withSession(httptest.NewRequest(http.MethodPost, "/api/saving-plans", strings.NewReader(tt.body)), testSession())
			w := httptest.NewRecorder()
			h.CreateSavingPlan(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			wantCalls := 0
			if tt.wantStatus == http.StatusCreated {
				wantCalls = 1
			}
			if n := env.backend.count("POST /saving-plans"); n != wantCalls {
				t.Errorf("backend called %d times, want %d", n, wantCalls)
			}
		})
	}
}

func TestRecordHandler_CreateNotification_UsesSignedInUser(t *testing.T) {
	env := newTestEnv(t)
	env.backend.withAlice()
	env.backend.handleJSON("POST /notifications", func() any {
		return model.Notification{ID: 5, UserID: 7, Message: "Hello"}
	})
	h := NewRecordHandler(env.pool)

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/notifications", strings.NewReader(`{"message":"Hello"}`)), testSession())
	w := httptest.NewRecorder()
	h.CreateNotification(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	var sent model.Notification
	if err := json.Unmarshal(env.backend.body("POST /notifications"), &sent); err != nil {
		t.Fatalf("backend body: %v", err)
	}
	if sent.UserID != 7 || sent.Message != "Hello" {
		t.Errorf("sent = %+v", sent)
	}
}

func TestRecordHandler_CreateTemplate_NoBackendUser(t *testing.T) {
	env := newTestEnv(t)
	env.backend.handleStatus("GET /users/sub-alice", http.StatusNotFound)
	h := NewRecordHandler(env.pool)

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/templates", strings.NewReader(`{"name":"Party"}`)), testSession())
	w := httptest.NewRecorder()
	h.CreateTemplate(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if n := env.backend.count("POST /templates"); n != 0 {
		t.Errorf("backend called %d times, want 0", n)
	}
}

func TestRecordHandler_Lists(t *testing.T) {
	env := newTestEnv(t)
	env.backend.handleJSON("GET /notifications", func() any { return []model.Notification{{ID: 1, Message: "Hi"}} })
	env.backend.handleJSON("GET /template", func() any { return []model.Template{{ID: 2, Name: "Party"}} })
	env.backend.handleJSON("GET /saving-plans", func() any { return nil })
	h := NewRecordHandler(env.pool)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{"notifications", h.ListNotifications, `"message":"Hi"`},
		{"templates", h.ListTemplates, `"name":"Party"`},
		{"saving plans", h.ListSavingPlans, `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.handler(w, withSession(httptest.NewRequest(http.MethodGet, "/", nil), testSession()))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("body = %s, want it to contain %s", w.Body.String(), tt.want)
			}
		})
	}
}
