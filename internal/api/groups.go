package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/planit-app/planit/internal/model"
	"github.com/planit-app/planit/internal/optional"
)

// CreateGroupInput はグループ作成の入力。
type CreateGroupInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	UserID      model.ID `json:"userId"`
}

// AddMemberInput はメールアドレスによるメンバー追加の入力。
type AddMemberInput struct {
	GroupID model.ID `json:"groupId"`
	Email   string   `json:"email"`
}

// GetGroups は全グループを取得する。
func (c *Client) GetGroups(ctx context.Context) ([]model.Group, error) {
	return query[[]model.Group](ctx, c, KeyGroups, "", tags(TagGroups),
		request{method: http.MethodGet, path: "group"},
	)
}

// CreateGroup はグループを作成する。userId は数値として送信する。
func (c *Client) CreateGroup(ctx context.Context, in CreateGroupInput) (model.Group, error) {
	return mutate[model.Group](ctx, c, "createGroup",
		request{method: http.MethodPost, path: "group", body: in},
		tags(TagGroups),
	)
}

// DeleteGroup はグループを削除する。
func (c *Client) DeleteGroup(ctx context.Context, groupID model.ID) error {
	_, err := mutate[json.RawMessage](ctx, c, "deleteGroup",
		request{method: http.MethodDelete, path: "group/" + groupID.String()},
		tags(TagGroups),
	)
	return err
}

// GetGroupMembers は全メンバーシップを取得する。
func (c *Client) GetGroupMembers(ctx context.Context) ([]model.GroupMember, error) {
	return query[[]model.GroupMember](ctx, c, KeyGroupMembers, "", tags(TagGroupMembers),
		request{method: http.MethodGet, path: "groupMember"},
	)
}

// AddMember はメールアドレスでグループにメンバーを追加する。
func (c *Client) AddMember(ctx context.Context, in AddMemberInput) error {
	_, err := mutate[json.RawMessage](ctx, c, "addMember",
		request{method: http.MethodPost, path: "groupMember/add-member", body: in},
		tags(TagGroupMembers),
	)
	return err
}

// RemoveMember はグループからメンバーを外す。
func (c *Client) RemoveMember(ctx context.Context, groupID, memberID model.ID) error {
	_, err := mutate[json.RawMessage](ctx, c, "removeMember",
		request{method: http.MethodDelete, path: "groupMember/" + groupID.String() + "/" + memberID.String()},
		tags(TagGroupMembers),
	)
	return err
}

// GetMembersByGroup はグループのメンバー詳細を取得する。groupID が未確定ならスキップする。
func (c *Client) GetMembersByGroup(ctx context.Context, groupID optional.Value[model.ID]) Result[[]model.GroupMemberDetail] {
	return skippable(ctx, groupID, func(ctx context.Context, id model.ID) ([]model.GroupMemberDetail, error) {
		return query[[]model.GroupMemberDetail](ctx, c, "getMembersByGroup", id.String(), tags(TagGroupMembers),
			request{method: http.MethodGet, path: "groupMember/" + id.String() + "/members"},
		)
	})
}
