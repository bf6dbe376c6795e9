// Package uistate はサイドバーの折りたたみ・ダークモード・グループの展開状態を保持する。
// 状態はセッションごとにJSONとして永続化する。
package uistate

import (
	"encoding/json"
	"fmt"

	"github.com/planit-app/planit/internal/groupview"
	"github.com/planit-app/planit/internal/model"
)

// State はセッション単位のUI状態。ゼロ値が初期状態。
type State struct {
	IsSidebarCollapsed bool                    `json:"isSidebarCollapsed"`
	IsDarkMode         bool                    `json:"isDarkMode"`
	ExpandedGroups     map[model.ID]bool       `json:"expandedGroups,omitempty"`
	AddMember          groupview.AddMemberForm `json:"addMember"`
}

// Decode はセッションに保存されたJSONからStateを復元する。空の場合は初期状態を返す。
func Decode(data []byte) (State, error) {
	var s State
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("failed to decode ui state: %w", err)
	}
	return s, nil
}

// Encode はStateをJSONに変換する。
func (s State) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// SetSidebarCollapsed はサイドバーの折りたたみ状態を設定する。
func (s *State) SetSidebarCollapsed(v bool) {
	s.IsSidebarCollapsed = v
}

// ToggleSidebar はサイドバーの折りたたみ状態を反転する。
func (s *State) ToggleSidebar() {
	s.IsSidebarCollapsed = !s.IsSidebarCollapsed
}

// SetDarkMode はダークモードを設定する。
func (s *State) SetDarkMode(v bool) {
	s.IsDarkMode = v
}

// ToggleDarkMode はダークモードを反転する。
func (s *State) ToggleDarkMode() {
	s.IsDarkMode = !s.IsDarkMode
}

// ToggleGroup はグループの展開状態を反転する。
func (s *State) ToggleGroup(groupID model.ID) {
	s.ExpandedGroups = groupview.ToggleExpanded(s.ExpandedGroups, groupID)
}

// IsExpanded はグループが展開されているかを返す。
func (s State) IsExpanded(groupID model.ID) bool {
	return s.ExpandedGroups[groupID]
}
