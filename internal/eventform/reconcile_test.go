package eventform

import (
	"testing"
	"time"
)

func TestReconcile(t *testing.T) {
	eastern := time.FixedZone("UTC-5", -5*60*60)

	tests := []struct {
		name    string
		display *time.Location
		sel     DateRange
		want    DateFields
	}{
		{
			name:    "same local day spanning UTC midnight collapses to start day",
			display: eastern,
			sel:     DateRange{Start: "2024-01-01T18:30:00-05:00", End: "2024-01-01T19:15:00-05:00"},
			want:    DateFields{StartDate: "2024-01-01", EndDate: "2024-01-01", StartTime: "18:30", EndTime: "19:15"},
		},
		{
			name:    "different days take end date from end instant",
			display: time.UTC,
			sel:     DateRange{Start: "2024-01-01T23:30:00Z", End: "2024-01-02T00:15:00Z"},
			want:    DateFields{StartDate: "2024-01-01", EndDate: "2024-01-02", StartTime: "23:30", EndTime: "00:15"},
		},
		{
			name:    "same day in UTC",
			display: time.UTC,
			sel:     DateRange{Start: "2024-03-10T09:00:00Z", End: "2024-03-10T10:45:30Z"},
			want:    DateFields{StartDate: "2024-03-10", EndDate: "2024-03-10", StartTime: "09:00", EndTime: "10:45"},
		},
		{
			name:    "local timestamps without offset use display zone",
			display: eastern,
			sel:     DateRange{Start: "2024-05-01T08:00", End: "2024-05-03T17:30"},
			want:    DateFields{StartDate: "2024-05-01", EndDate: "2024-05-03", StartTime: "08:00", EndTime: "17:30"},
		},
		{
			name:    "date only selection is midnight UTC",
			display: time.UTC,
			sel:     DateRange{Start: "2024-06-01", End: "2024-06-02"},
			want:    DateFields{StartDate: "2024-06-01", EndDate: "2024-06-02", StartTime: "00:00", EndTime: "00:00"},
		},
		{
			name:    "unparseable values are split as is",
			display: time.UTC,
			sel:     DateRange{Start: "someday-x:T12:34:56", End: "later"},
			want:    DateFields{StartDate: "someday-x:", EndDate: "later", StartTime: "12:34", EndTime: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewReconciler(tt.display).Reconcile(tt.sel)
			if got != tt.want {
				t.Errorf("Reconcile() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// 表示タイムゾーンで同じ日の予定は、UTC表記で日付をまたいでも終了日が開始日に揃う。
func TestReconcile_MidnightBoundaryUsesInstantDayEquality(t *testing.T) {
	r := NewReconciler(time.FixedZone("UTC-5", -5*60*60))

	got := r.Reconcile(DateRange{
		Start: "2024-01-01T23:30:00Z",
		End:   "2024-01-02T00:15:00Z",
	})

	if got.StartDate != "2024-01-01" {
		t.Errorf("StartDate = %q, want %q", got.StartDate, "2024-01-01")
	}
	if got.EndDate != "2024-01-01" {
		t.Errorf("EndDate = %q, want %q (must not roll to the next day)", got.EndDate, "2024-01-01")
	}
	if got.StartTime != "18:30" || got.EndTime != "19:15" {
		t.Errorf("times = %s-%s, want 18:30-19:15", got.StartTime, got.EndTime)
	}
}

func TestCombine_UsesDisplayZone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	r := NewReconciler(tokyo)

	got, err := r.Combine("2024-01-01", "09:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Combine = %v, want %v", got, want)
	}
}
