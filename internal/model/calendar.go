package model

// DefaultCalendarID はイベント作成フォームの既定カレンダーID。
const DefaultCalendarID ID = 1

// Calendar はユーザー登録時にバックエンドが作成するカレンダー。
type Calendar struct {
	ID     ID     `json:"id"`
	UserID ID     `json:"userId"`
	Name   string `json:"name"`
}

// Event はカレンダー上の予定を表す。
// 日付は YYYY-MM-DD、時刻は HH:MM の文字列で保持する。
type Event struct {
	ID          ID     `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CalendarID  ID     `json:"calendarId"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
}

// Notification はユーザー向け通知。
type Notification struct {
	ID        ID     `json:"id,omitempty"`
	UserID    ID     `json:"userId"`
	Message   string `json:"message"`
	IsRead    bool   `json:"isRead"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Template はイベント作成用のテンプレート。
type Template struct {
	ID      ID     `json:"id,omitempty"`
	UserID  ID     `json:"userId"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// SavingPlan は積立計画。
type SavingPlan struct {
	ID            ID      `json:"id,omitempty"`
	UserID        ID      `json:"userId"`
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"targetAmount"`
	CurrentAmount float64 `json:"currentAmount"`
	Deadline      string  `json:"deadline,omitempty"`
}
