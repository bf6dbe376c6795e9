package model

import "encoding/json"

// MemberStatusActive は「自分のグループ」の算出対象となる唯一のメンバーシップ状態。
const MemberStatusActive = "Active"

// Group はユーザーが作成するグループを表す。
type Group struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	UserID      ID     `json:"userId"`
}

// GroupMember はユーザーとグループの所属関係を表す。
// バックエンドは groupId を文字列で返すことがあるため ID 型で受ける。
type GroupMember struct {
	ID      ID     `json:"id"`
	GroupID ID     `json:"groupId"`
	UserID  ID     `json:"userId"`
	Status  string `json:"status"`
}

// IsActive はメンバーシップが有効状態かを返す。
func (m GroupMember) IsActive() bool {
	return m.Status == MemberStatusActive
}

// GroupMemberDetail はグループ単位のメンバー一覧APIのレスポンス要素。
// events の中身はバックエンド依存のため未解釈のまま保持する。
type GroupMemberDetail struct {
	UserID ID                `json:"userId"`
	Name   string            `json:"name"`
	Email  string            `json:"email"`
	Events []json.RawMessage `json:"events"`
}
