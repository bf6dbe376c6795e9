package view

import (
	"context"

	"github.com/planit-app/planit/internal/uistate"
)

// NoUser はユーザー名が解決できない場合の表示名。
const NoUser = "No User"

// Navbar はナビゲーションバーのビューモデル。
type Navbar struct {
	ShowMenuButton bool   `json:"showMenuButton"`
	IsDarkMode     bool   `json:"isDarkMode"`
	UserName       string `json:"userName"`
}

// Navbar はナビゲーションバーを組み立てる。
// メニューボタンはサイドバーが折りたたまれている時だけ表示する。
func (b *Builder) Navbar(ctx context.Context, q Queries, ui uistate.State) Navbar {
	nav := Navbar{
		ShowMenuButton: ui.IsSidebarCollapsed,
		IsDarkMode:     ui.IsDarkMode,
		UserName:       NoUser,
	}
	if u := b.currentUser(ctx, q); u != nil {
		if name := b.sanitizer.Text(u.Name); name != "" {
			nav.UserName = name
		}
	}
	return nav
}
