package eventform

import (
	"errors"
	"testing"
	"time"

	"github.com/planit-app/planit/internal/model"
)

func newTestModal() *Modal {
	return NewModal(NewReconciler(time.UTC))
}

func fillValid(p *Payload) {
	p.Title = "Team dinner"
	p.Description = "Quarterly dinner"
	p.StartDate = "2024-01-01"
	p.StartTime = "18:00"
	p.EndDate = "2024-01-01"
	p.EndTime = "20:00"
}

func TestModal_OpenWithoutSelectionStartsEmpty(t *testing.T) {
	m := newTestModal()
	m.Open(nil)

	if !m.IsOpen() {
		t.Fatal("modal should be open")
	}
	f := m.Fields()
	if f.StartDate != "" || f.EndDate != "" || f.StartTime != "" || f.EndTime != "" {
		t.Errorf("date fields should be empty: %+v", f)
	}
	if f.CalendarID != model.DefaultCalendarID {
		t.Errorf("CalendarID = %d, want %d", f.CalendarID, model.DefaultCalendarID)
	}
}

func TestModal_OpenWithSelectionReconciles(t *testing.T) {
	m := newTestModal()
	m.Open(&DateRange{Start: "2024-02-10T09:15:00Z", End: "2024-02-10T11:00:00Z"})

	f := m.Fields()
	if f.StartDate != "2024-02-10" || f.EndDate != "2024-02-10" || f.StartTime != "09:15" || f.EndTime != "11:00" {
		t.Errorf("fields = %+v", f)
	}
}

func TestModal_SubmitRejectsEqualInstants(t *testing.T) {
	m := newTestModal()
	m.Open(nil)
	m.Edit(func(p *Payload) {
		fillValid(p)
		p.EndTime = p.StartTime
	})

	called := 0
	err := m.Submit(func(Payload) { called++ })

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Message != MsgEndBeforeStart {
		t.Errorf("Message = %q, want %q", verr.Message, MsgEndBeforeStart)
	}
	if called != 0 {
		t.Errorf("onSubmit called %d times, want 0", called)
	}
	if !m.IsOpen() {
		t.Error("modal should stay open after a validation failure")
	}
	if m.Fields().Title != "Team dinner" {
		t.Error("fields should be unchanged after a validation failure")
	}
}

func TestModal_SubmitRejectsEndBeforeStart(t *testing.T) {
	m := newTestModal()
	m.Open(nil)
	m.Edit(func(p *Payload) {
		fillValid(p)
		p.EndDate = "2023-12-31"
	})

	called := 0
	err := m.Submit(func(Payload) { called++ })

	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Message != MsgEndBeforeStart {
		t.Fatalf("expected end-before-start validation error, got %v", err)
	}
	if called != 0 {
		t.Errorf("onSubmit called %d times, want 0", called)
	}
}

func TestModal_SubmitRequiresFields(t *testing.T) {
	m := newTestModal()
	m.Open(nil)
	m.Edit(func(p *Payload) {
		fillValid(p)
		p.Title = ""
		p.StartTime = "25:99"
	})

	err := m.Submit(func(Payload) { t.Error("onSubmit must not be called") })

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Message != MsgRequired {
		t.Errorf("Message = %q, want %q", verr.Message, MsgRequired)
	}
	if len(verr.Fields) != 2 {
		t.Errorf("Fields = %v, want Title and StartTime", verr.Fields)
	}
}

func TestModal_ValidSubmitEmitsOnceClearsAndCloses(t *testing.T) {
	m := newTestModal()
	m.Open(nil)
	m.Edit(func(p *Payload) {
		fillValid(p)
		p.CalendarID = 3
	})

	var emitted []Payload
	if err := m.Submit(func(p Payload) { emitted = append(emitted, p) }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(emitted) != 1 {
		t.Fatalf("emitted %d payloads, want 1", len(emitted))
	}
	want := Payload{
		Title:       "Team dinner",
		Description: "Quarterly dinner",
		CalendarID:  3,
		StartDate:   "2024-01-01",
		EndDate:     "2024-01-01",
		StartTime:   "18:00",
		EndTime:     "20:00",
	}
	if emitted[0] != want {
		t.Errorf("payload = %+v, want %+v", emitted[0], want)
	}

	if m.IsOpen() {
		t.Error("modal should be closed after a valid submit")
	}
	if got := m.Fields(); got != emptyPayload() {
		t.Errorf("fields should be cleared, got %+v", got)
	}
}

func TestModal_CancelRetainsFields(t *testing.T) {
	m := newTestModal()
	m.Open(nil)
	m.Edit(fillValid)
	m.Cancel()

	if m.IsOpen() {
		t.Error("modal should be closed after cancel")
	}

	m.Open(nil)
	if m.Fields().Title != "Team dinner" {
		t.Error("fields should be retained across cancel and reopen")
	}
}

func TestModal_SubmitWhenClosed(t *testing.T) {
	m := newTestModal()
	if err := m.Submit(func(Payload) {}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestPayload_Event(t *testing.T) {
	p := Payload{Title: "a", Description: "b", CalendarID: 2, StartDate: "2024-01-01", EndDate: "2024-01-02", StartTime: "10:00", EndTime: "11:00"}
	ev := p.Event()
	if ev.ID != 0 || ev.Title != "a" || ev.CalendarID != 2 || ev.EndDate != "2024-01-02" {
		t.Errorf("Event() = %+v", ev)
	}
}
