// Package groupview は「自分のグループ」一覧とメンバー一覧の算出、
// およびメンバー追加フォームの状態を扱う。
// 算出関数は取得済みのコレクションだけを入力とする純粋関数で、
// 未取得のコレクションは nil (空) として渡してよい。
package groupview

import "github.com/planit-app/planit/internal/model"

// UserGroups は user が有効なメンバーとして所属するグループを返す。
// メンバーシップが存在しないグループを参照している場合、そのエントリは除外する。
// user が nil の場合は空を返す。
func UserGroups(memberships []model.GroupMember, groups []model.Group, user *model.User) []model.Group {
	if user == nil {
		return []model.Group{}
	}

	byID := make(map[model.ID]model.Group, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}

	out := []model.Group{}
	for _, gm := range memberships {
		if gm.UserID != user.ID || !gm.IsActive() {
			continue
		}
		g, ok := byID[gm.GroupID]
		if !ok {
			continue
		}
		out = append(out, g)
	}
	return out
}

// Member はグループのメンバー一覧の1行。
type Member struct {
	UserID        model.ID `json:"userId"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	IsCurrentUser bool     `json:"isCurrentUser"`
}

// DisplayName は一覧表示用の名前を返す。現在のユーザーには "(You)" を付ける。
func (m Member) DisplayName() string {
	if m.IsCurrentUser {
		return m.Name + " (You)"
	}
	return m.Name
}

// GroupMembers は groupID のメンバーシップをユーザーレコードに解決して返す。
// ユーザーレコードが見つからないメンバーシップは除外する。
func GroupMembers(groupID model.ID, memberships []model.GroupMember, users []model.User, currentUserID model.ID) []Member {
	byID := make(map[model.ID]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := []Member{}
	for _, gm := range memberships {
		if gm.GroupID != groupID {
			continue
		}
		u, ok := byID[gm.UserID]
		if !ok {
			continue
		}
		out = append(out, Member{
			UserID:        u.ID,
			Name:          u.Name,
			Email:         u.Email,
			IsCurrentUser: u.ID == currentUserID,
		})
	}
	return out
}

// ToggleExpanded はグループの展開状態を反転した新しいマップを返す。
func ToggleExpanded(expanded map[model.ID]bool, groupID model.ID) map[model.ID]bool {
	out := make(map[model.ID]bool, len(expanded)+1)
	for id, v := range expanded {
		out[id] = v
	}
	out[groupID] = !expanded[groupID]
	return out
}
