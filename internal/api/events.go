package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/planit-app/planit/internal/model"
	"github.com/planit-app/planit/internal/optional"
)

// GetCalendars は全カレンダーを取得する。
func (c *Client) GetCalendars(ctx context.Context) ([]model.Calendar, error) {
	return query[[]model.Calendar](ctx, c, "getCalendars", "", tags(TagCalendars),
		request{method: http.MethodGet, path: "calendars"},
	)
}

// CreateCalendar はカレンダーを作成する。
func (c *Client) CreateCalendar(ctx context.Context, cal model.Calendar) (model.Calendar, error) {
	return mutate[model.Calendar](ctx, c, "createCalendar",
		request{method: http.MethodPost, path: "calendars", body: cal},
		tags(TagCalendars),
	)
}

// GetEventsByCalendar はカレンダーのイベントを取得する。calendarID が未確定ならスキップする。
func (c *Client) GetEventsByCalendar(ctx context.Context, calendarID optional.Value[model.ID]) Result[[]model.Event] {
	return skippable(ctx, calendarID, func(ctx context.Context, id model.ID) ([]model.Event, error) {
		return query[[]model.Event](ctx, c, "getEventCalendar", id.String(), tags(TagEvents),
			request{
				method: http.MethodGet,
				path:   "event/calendar",
				query:  map[string]string{"calendarId": id.String()},
			},
		)
	})
}

// CreateEvent はイベントを作成する。
func (c *Client) CreateEvent(ctx context.Context, ev model.Event) (model.Event, error) {
	return mutate[model.Event](ctx, c, "createEvent",
		request{method: http.MethodPost, path: "event", body: ev},
		tags(TagEvents),
	)
}

// UpdateEvent はイベントを更新する。ID はパスにのみ含め、本文からは除く。
func (c *Client) UpdateEvent(ctx context.Context, ev model.Event) (model.Event, error) {
	id := ev.ID
	ev.ID = 0
	return mutate[model.Event](ctx, c, "updateEvent",
		request{method: http.MethodPut, path: "event/" + id.String(), body: ev},
		tags(TagEvents),
	)
}

// DeleteEvent はイベントを削除する。
func (c *Client) DeleteEvent(ctx context.Context, id model.ID) error {
	_, err := mutate[json.RawMessage](ctx, c, "deleteEvent",
		request{method: http.MethodDelete, path: "event/" + id.String()},
		tags(TagEvents),
	)
	return err
}
