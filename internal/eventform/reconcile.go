// Package eventform はイベント作成フォームの日付・時刻フィールドの算出と検証を行う。
package eventform

import (
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// zonedLayouts はオフセット付き日時文字列の書式。
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
}

// localLayouts はタイムゾーン指定の無い日時文字列の書式。表示タイムゾーンで解釈する。
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// DateRange はカレンダー上で選択された期間。値はISO形式の日時文字列。
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DateFields はフォームで個別に編集する4つの日付・時刻フィールド。
type DateFields struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Reconciler は選択期間からフォームフィールドを算出する。
//
// 日付文字列は DateZone (既定はUTC) で、時刻と「同じ日か」の判定は
// Display (利用者の表示タイムゾーン) で求める。
type Reconciler struct {
	Display  *time.Location
	DateZone *time.Location
}

// NewReconciler は表示タイムゾーンを指定してReconcilerを生成する。
// display が nil の場合は time.Local を使う。
func NewReconciler(display *time.Location) *Reconciler {
	if display == nil {
		display = time.Local
	}
	return &Reconciler{
		Display:  display,
		DateZone: time.UTC,
	}
}

// Reconcile は選択期間の開始・終了日時から4つのフィールドを算出する。
//
// 開始と終了が表示タイムゾーンで同じ日に収まる場合、終了日は開始日時の日付を使う。
// 境界の時刻が日付をまたいで終了日が1日進むのを防ぐためのもので、
// 判定は元の日時同士で行い、算出後のフィールドは参照しない。
func (r *Reconciler) Reconcile(sel DateRange) DateFields {
	start, startErr := r.ParseInstant(sel.Start)
	end, endErr := r.ParseInstant(sel.End)
	if startErr != nil || endErr != nil {
		return splitRaw(sel)
	}

	fields := DateFields{
		StartDate: start.In(r.DateZone).Format(dateLayout),
		StartTime: start.In(r.Display).Format(clockLayout),
		EndTime:   end.In(r.Display).Format(clockLayout),
	}
	if r.sameDay(start, end) {
		fields.EndDate = fields.StartDate
	} else {
		fields.EndDate = end.In(r.DateZone).Format(dateLayout)
	}
	return fields
}

// ParseInstant はISO形式の日時文字列を解析する。
// オフセット付きはそのまま、オフセット無しの日時は表示タイムゾーン、
// 日付のみはUTCの0時として扱う。
func (r *Reconciler) ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, r.Display); err == nil {
			return t, nil
		}
	}
	return time.Parse(dateLayout, s)
}

// Combine は日付フィールドと時刻フィールドを連結して表示タイムゾーンの日時にする。
func (r *Reconciler) Combine(date, clock string) (time.Time, error) {
	return time.ParseInLocation(dateLayout+"T"+clockLayout, date+"T"+clock, r.Display)
}

func (r *Reconciler) sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(r.Display).Date()
	by, bm, bd := b.In(r.Display).Date()
	return ay == by && am == bm && ad == bd
}

// splitRaw は解析できない値を "T" で分割して日付と時刻(先頭5文字)を取り出す。
func splitRaw(sel DateRange) DateFields {
	startDate, startTime := splitISO(sel.Start)
	endDate, endTime := splitISO(sel.End)
	return DateFields{
		StartDate: startDate,
		EndDate:   endDate,
		StartTime: startTime,
		EndTime:   endTime,
	}
}

func splitISO(s string) (string, string) {
	date, clock, _ := strings.Cut(s, "T")
	if len(clock) > 5 {
		clock = clock[:5]
	}
	return date, clock
}
