package view

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/planit-app/planit/internal/groupview"
	"github.com/planit-app/planit/internal/model"
	"github.com/planit-app/planit/internal/uistate"
)

// EmptyGroupsMessage は所属グループが無い場合の表示文言。
const EmptyGroupsMessage = "You are not part of any groups."

// グループカードのメンバー追加ボタンの表示文言。
const (
	LabelAddMember = "+ Add Member"
	LabelCancel    = "Cancel"
)

// MemberRow はメンバー一覧の1行。
type MemberRow struct {
	UserID        model.ID `json:"userId"`
	DisplayName   string   `json:"displayName"`
	Email         string   `json:"email"`
	IsCurrentUser bool     `json:"isCurrentUser"`
}

// AddMemberPanel は展開中のグループに表示するメンバー追加欄。
type AddMemberPanel struct {
	Open        bool   `json:"open"`
	ButtonLabel string `json:"buttonLabel"`
	Email       string `json:"email,omitempty"`
}

// GroupCard はグループ一覧の1枚分。
type GroupCard struct {
	ID          model.ID        `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Expanded    bool            `json:"expanded"`
	Members     []MemberRow     `json:"members,omitempty"`
	AddMember   *AddMemberPanel `json:"addMember,omitempty"`
}

// GroupsPage はグループ画面のビューモデル。
type GroupsPage struct {
	Groups       []GroupCard `json:"groups"`
	EmptyMessage string      `json:"emptyMessage,omitempty"`
}

// groupsData はグループ画面に必要なコレクション。取得できなかったものは nil。
type groupsData struct {
	user        *model.User
	users       []model.User
	groups      []model.Group
	memberships []model.GroupMember
}

// GroupsPage はグループ画面を組み立てる。
// 各コレクションは並行に取得し、失敗したものは空として扱う。
func (b *Builder) GroupsPage(ctx context.Context, q Queries, ui uistate.State) GroupsPage {
	data := b.loadGroupsData(ctx, q)

	page := GroupsPage{Groups: []GroupCard{}}

	var currentID model.ID
	if data.user != nil {
		currentID = data.user.ID
	}

	for _, g := range groupview.UserGroups(data.memberships, data.groups, data.user) {
		card := GroupCard{
			ID:          g.ID,
			Title:       b.sanitizer.Text(g.Title),
			Description: b.sanitizer.Rich(g.Description),
			Expanded:    ui.IsExpanded(g.ID),
		}
		if card.Expanded {
			card.Members = b.memberRows(groupview.GroupMembers(g.ID, data.memberships, data.users, currentID))
			card.AddMember = addMemberPanel(ui.AddMember, g.ID)
		}
		page.Groups = append(page.Groups, card)
	}

	if len(page.Groups) == 0 {
		page.EmptyMessage = EmptyGroupsMessage
	}
	return page
}

func (b *Builder) loadGroupsData(ctx context.Context, q Queries) groupsData {
	var data groupsData
	// 取得失敗は空として扱う。エラーを返すのはリクエストが中断された場合のみ。
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		data.user = b.currentUser(ctx, q)
		return nil
	})
	g.Go(func() error {
		users, err := q.GetUsers(ctx)
		if err != nil {
			b.logFetchError("users", err)
			return ctx.Err()
		}
		data.users = users
		return nil
	})
	g.Go(func() error {
		groups, err := q.GetGroups(ctx)
		if err != nil {
			b.logFetchError("groups", err)
			return ctx.Err()
		}
		data.groups = groups
		return nil
	})
	g.Go(func() error {
		memberships, err := q.GetGroupMembers(ctx)
		if err != nil {
			b.logFetchError("group_members", err)
			return ctx.Err()
		}
		data.memberships = memberships
		return nil
	})

	if err := g.Wait(); err != nil {
		b.logger.Debug("groups page load cancelled", slog.String("error", err.Error()))
	}
	return data
}

func (b *Builder) logFetchError(collection string, err error) {
	b.logger.Warn("failed to load collection",
		slog.String("collection", collection),
		slog.String("error", err.Error()),
	)
}

func (b *Builder) memberRows(members []groupview.Member) []MemberRow {
	rows := make([]MemberRow, 0, len(members))
	for _, m := range members {
		m.Name = b.sanitizer.Text(m.Name)
		rows = append(rows, MemberRow{
			UserID:        m.UserID,
			DisplayName:   m.DisplayName(),
			Email:         b.sanitizer.Text(m.Email),
			IsCurrentUser: m.IsCurrentUser,
		})
	}
	return rows
}

func addMemberPanel(form groupview.AddMemberForm, groupID model.ID) *AddMemberPanel {
	if form.IsOpenFor(groupID) {
		return &AddMemberPanel{Open: true, ButtonLabel: LabelCancel, Email: form.Email}
	}
	return &AddMemberPanel{ButtonLabel: LabelAddMember}
}
