package groupview

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/planit-app/planit/internal/api"
	"github.com/planit-app/planit/internal/model"
	"github.com/planit-app/planit/internal/optional"
)

// メンバー追加フォームの表示メッセージ。
const (
	MsgEnterEmail  = "Please enter an email."
	MsgMemberAdded = "Member added successfully!"
	MsgAddFailed   = "Failed to add member."
)

// ErrBlankEmail はメールアドレス未入力での送信を表す。リクエストは送信されない。
var ErrBlankEmail = errors.New("email is blank")

// MemberAdder はメールアドレスでメンバーを追加する。
type MemberAdder interface {
	AddMember(ctx context.Context, in api.AddMemberInput) error
}

// AddMemberForm はメンバー追加サブフォームの状態。
// 同時に開けるのは1グループ分だけ。
type AddMemberForm struct {
	OpenGroupID optional.Value[model.ID] `json:"openGroupId"`
	Email       string                   `json:"email"`

	// Message は直前の送信結果。送信のレスポンスでのみ返し、UI状態には保存しない。
	Message string `json:"-"`
}

// IsOpenFor は groupID のサブフォームが開いているかを返す。
func (f *AddMemberForm) IsOpenFor(groupID model.ID) bool {
	id, ok := f.OpenGroupID.Get()
	return ok && id == groupID
}

// Toggle は groupID のサブフォームを開閉する。入力中のメールアドレスはクリアする。
func (f *AddMemberForm) Toggle(groupID model.ID) {
	if f.IsOpenFor(groupID) {
		f.OpenGroupID = optional.None[model.ID]()
	} else {
		f.OpenGroupID = optional.Some(groupID)
	}
	f.Email = ""
	f.Message = ""
}

// Submit は groupID へのメンバー追加を実行する。
//   - 空白のみのメールアドレスはリクエストせず ErrBlankEmail を返す
//   - 成功時は入力をクリアしてサブフォームを閉じる
//   - 失敗時は入力とサブフォームを残したまま原因エラーを返す
func (f *AddMemberForm) Submit(ctx context.Context, adder MemberAdder, groupID model.ID, logger *slog.Logger) error {
	if strings.TrimSpace(f.Email) == "" {
		f.Message = MsgEnterEmail
		return ErrBlankEmail
	}

	if err := adder.AddMember(ctx, api.AddMemberInput{GroupID: groupID, Email: f.Email}); err != nil {
		logger.Error("failed to add member",
			slog.String("group_id", groupID.String()),
			slog.String("error", err.Error()),
		)
		f.Message = MsgAddFailed
		return err
	}

	f.Message = MsgMemberAdded
	f.OpenGroupID = optional.None[model.ID]()
	f.Email = ""
	return nil
}
