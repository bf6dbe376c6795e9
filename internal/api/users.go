package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/planit-app/planit/internal/model"
	"github.com/planit-app/planit/internal/optional"
)

// GetUser はIDでユーザーを取得する。id が未確定ならスキップする。
func (c *Client) GetUser(ctx context.Context, id optional.Value[string]) Result[model.User] {
	return skippable(ctx, id, func(ctx context.Context, id string) (model.User, error) {
		return query[model.User](ctx, c, "getUser", id,
			[]TagRef{TagWithID(TagUsers, id)},
			request{method: http.MethodGet, path: "user/" + url.PathEscape(id)},
		)
	})
}

// GetUsers は全ユーザーを取得する。
func (c *Client) GetUsers(ctx context.Context) ([]model.User, error) {
	return query[[]model.User](ctx, c, KeyUsers, "", tags(TagUsers),
		request{method: http.MethodGet, path: "user"},
	)
}

// CreateUser はユーザーを作成する。
func (c *Client) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	return mutate[model.User](ctx, c, "createUser",
		request{method: http.MethodPost, path: "users", body: user},
		tags(TagUsers),
	)
}

// DeleteUser はユーザーを削除する。
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := mutate[json.RawMessage](ctx, c, "deleteUser",
		request{method: http.MethodDelete, path: "user/" + url.PathEscape(id)},
		tags(TagUsers),
	)
	return err
}
