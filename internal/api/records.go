package api

import (
	"context"
	"net/http"

	"github.com/planit-app/planit/internal/model"
)

// GetNotifications は通知一覧を取得する。
func (c *Client) GetNotifications(ctx context.Context) ([]model.Notification, error) {
	return query[[]model.Notification](ctx, c, "getNotifications", "", tags(TagNotifications),
		request{method: http.MethodGet, path: "notifications"},
	)
}

// CreateNotification は通知を作成する。
func (c *Client) CreateNotification(ctx context.Context, n model.Notification) (model.Notification, error) {
	return mutate[model.Notification](ctx, c, "createNotification",
		request{method: http.MethodPost, path: "notifications", body: n},
		tags(TagNotifications),
	)
}

// GetTemplates はテンプレート一覧を取得する。
// 取得は単数形 template、作成は複数形 templates のパスを使う。
func (c *Client) GetTemplates(ctx context.Context) ([]model.Template, error) {
	return query[[]model.Template](ctx, c, "getTemplates", "", tags(TagTemplates),
		request{method: http.MethodGet, path: "template"},
	)
}

// CreateTemplate はテンプレートを作成する。
func (c *Client) CreateTemplate(ctx context.Context, t model.Template) (model.Template, error) {
	return mutate[model.Template](ctx, c, "createTemplate",
		request{method: http.MethodPost, path: "templates", body: t},
		tags(TagTemplates),
	)
}

// GetSavingPlans は積立計画一覧を取得する。
func (c *Client) GetSavingPlans(ctx context.Context) ([]model.SavingPlan, error) {
	return query[[]model.SavingPlan](ctx, c, "getSavingPlans", "", tags(TagSavingPlans),
		request{method: http.MethodGet, path: "saving-plans"},
	)
}

// CreateSavingPlan は積立計画を作成する。
func (c *Client) CreateSavingPlan(ctx context.Context, p model.SavingPlan) (model.SavingPlan, error) {
	return mutate[model.SavingPlan](ctx, c, "createSavingPlan",
		request{method: http.MethodPost, path: "saving-plans", body: p},
		tags(TagSavingPlans),
	)
}
