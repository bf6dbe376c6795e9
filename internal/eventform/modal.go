package eventform

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/planit-app/planit/internal/model"
)

// MsgEndBeforeStart は終了日時が開始日時より後でない場合の表示メッセージ。
const MsgEndBeforeStart = "End date and time must be after start date and time."

// MsgRequired は必須フィールドが未入力の場合の表示メッセージ。
const MsgRequired = "Please fill out all required fields."

// ErrClosed は閉じているフォームに対する送信を表す。
var ErrClosed = errors.New("event form is closed")

// Payload はフォーム送信時に発行されるイベント作成内容。
type Payload struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	CalendarID  model.ID `json:"calendarId" validate:"required"`
	StartDate   string   `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string   `json:"endDate" validate:"required,datetime=2006-01-02"`
	StartTime   string   `json:"startTime" validate:"required,datetime=15:04"`
	EndTime     string   `json:"endTime" validate:"required,datetime=15:04"`
}

// Event はペイロードをバックエンドのイベント表現に変換する。
func (p Payload) Event() model.Event {
	return model.Event{
		Title:       p.Title,
		Description: p.Description,
		CalendarID:  p.CalendarID,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		StartTime:   p.StartTime,
		EndTime:     p.EndTime,
	}
}

func (p *Payload) setDates(f DateFields) {
	p.StartDate = f.StartDate
	p.EndDate = f.EndDate
	p.StartTime = f.StartTime
	p.EndTime = f.EndTime
}

func emptyPayload() Payload {
	return Payload{CalendarID: model.DefaultCalendarID}
}

// ValidationError はフォーム送信の検証エラー。Message はそのまま利用者に表示する。
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + " (" + strings.Join(e.Fields, ", ") + ")"
}

// Modal はイベント作成フォームの状態を保持する。
//
// 状態遷移:
//   - closed → Open → open
//   - open → Cancel → closed (入力値は保持)
//   - open → Submit 検証失敗 → open (入力値はそのまま)
//   - open → Submit 検証成功 → closed (ペイロード発行、入力値はクリア)
type Modal struct {
	rec      *Reconciler
	validate *validator.Validate
	open     bool
	fields   Payload
}

// NewModal は閉じた状態のフォームを生成する。
func NewModal(rec *Reconciler) *Modal {
	return &Modal{
		rec:      rec,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		fields:   emptyPayload(),
	}
}

// IsOpen はフォームが開いているかを返す。
func (m *Modal) IsOpen() bool {
	return m.open
}

// Fields は現在の入力値を返す。
func (m *Modal) Fields() Payload {
	return m.fields
}

// Open はフォームを開く。sel が指定されていれば日付・時刻フィールドを選択期間から算出する。
func (m *Modal) Open(sel *DateRange) {
	m.open = true
	if sel != nil {
		m.Select(*sel)
	}
}

// Select は選択期間の変更に合わせて日付・時刻フィールドを算出し直す。
func (m *Modal) Select(sel DateRange) {
	m.fields.setDates(m.rec.Reconcile(sel))
}

// Edit は入力値を変更する。
func (m *Modal) Edit(fn func(p *Payload)) {
	fn(&m.fields)
}

// Cancel はフォームを閉じる。入力値はクリアしない。
func (m *Modal) Cancel() {
	m.open = false
}

// Submit は入力値を検証し、成功時に onSubmit を1回だけ呼び出す。
// 成功後は後続処理の成否に関わらず入力値をクリアしてフォームを閉じる。
// 検証に失敗した場合は *ValidationError を返し、状態は変更しない。
func (m *Modal) Submit(onSubmit func(Payload)) error {
	if !m.open {
		return ErrClosed
	}
	if err := m.Validate(m.fields); err != nil {
		return err
	}

	p := m.fields
	onSubmit(p)

	m.fields = emptyPayload()
	m.open = false
	return nil
}

// Validate はペイロードの必須項目と日時の前後関係を検証する。
// 開始・終了は日付と時刻を連結し、同じタイムゾーンで解釈して比較する。
func (m *Modal) Validate(p Payload) error {
	if err := m.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return &ValidationError{Message: MsgRequired, Fields: fields}
		}
		return err
	}

	start, err := m.rec.Combine(p.StartDate, p.StartTime)
	if err != nil {
		return &ValidationError{Message: MsgRequired, Fields: []string{"StartDate", "StartTime"}}
	}
	end, err := m.rec.Combine(p.EndDate, p.EndTime)
	if err != nil {
		return &ValidationError{Message: MsgRequired, Fields: []string{"EndDate", "EndTime"}}
	}

	if !end.After(start) {
		return &ValidationError{Message: MsgEndBeforeStart}
	}
	return nil
}
