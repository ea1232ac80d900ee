package gcal

import (
	"context"
	"fmt"
)

// CalendarInfo represents a Google Calendar
type CalendarInfo struct {
	ID         string `json:"id"`
	Summary    string `json:"summary"`
	Primary    bool   `json:"primary"`
	AccessRole string `json:"access_role"`
}

// ListCalendars returns all calendars the account has access to
func (c *Client) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	service, err := c.svc()
	if err != nil {
		return nil, fmt.Errorf("not authenticated")
	}

	list, err := service.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	calendars := make([]CalendarInfo, 0, len(list.Items))
	for _, item := range list.Items {
		calendars = append(calendars, CalendarInfo{
			ID:         item.Id,
			Summary:    item.Summary,
			Primary:    item.Primary,
			AccessRole: item.AccessRole,
		})
	}

	return calendars, nil
}
