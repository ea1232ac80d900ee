package gcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/omriShneor/alfred_booking/internal/timeutil"
)

var ErrEventNotFound = errors.New("google calendar event not found")

// IsEventNotFound returns true when a Google Calendar event no longer exists.
func IsEventNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound)
}

// Event is a calendar event with its start and end resolved to absolute instants.
type Event struct {
	ID          string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	AllDay      bool
	TimeZone    string
	// Private mirrors extendedProperties.private.
	Private map[string]string
}

// ListOptions bounds an event listing.
type ListOptions struct {
	TimeMin time.Time
	TimeMax time.Time
	// Query is the free-text filter passed as q.
	Query string
}

func parseGoogleEventTimes(item *calendar.Event, loc *time.Location) (time.Time, time.Time, bool, error) {
	if item == nil || item.Start == nil || item.End == nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("event is missing start or end")
	}

	// All-day events use Date instead of DateTime.
	if item.Start.Date != "" {
		startDate, err := time.ParseInLocation(timeutil.DateLayout, item.Start.Date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse all-day start date: %w", err)
		}
		endDate, err := time.ParseInLocation(timeutil.DateLayout, item.End.Date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse all-day end date: %w", err)
		}
		return startDate, endDate, true, nil
	}

	if item.Start.DateTime == "" || item.End.DateTime == "" {
		return time.Time{}, time.Time{}, false, fmt.Errorf("event datetime is missing")
	}

	startLoc := eventLocation(item.Start.TimeZone, loc)
	startTime, err := timeutil.ParseDateTime(item.Start.DateTime, startLoc)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse start datetime: %w", err)
	}
	endTime, err := timeutil.ParseDateTime(item.End.DateTime, eventLocation(item.End.TimeZone, startLoc))
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse end datetime: %w", err)
	}

	return startTime, endTime, false, nil
}

func eventLocation(name string, fallback *time.Location) *time.Location {
	if name == "" {
		return fallback
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fallback
	}
	return loc
}

func fromCalendarEvent(item *calendar.Event, loc *time.Location) (Event, error) {
	start, end, allDay, err := parseGoogleEventTimes(item, loc)
	if err != nil {
		return Event{}, err
	}

	event := Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Location:    item.Location,
		Start:       start,
		End:         end,
		AllDay:      allDay,
		TimeZone:    item.Start.TimeZone,
	}
	if item.ExtendedProperties != nil && len(item.ExtendedProperties.Private) > 0 {
		event.Private = make(map[string]string, len(item.ExtendedProperties.Private))
		for k, v := range item.ExtendedProperties.Private {
			event.Private[k] = v
		}
	}
	return event, nil
}

// toCalendarEvent builds the API body. Zero fields are left unset so the same body works for patches.
func (c *Client) toCalendarEvent(e Event) *calendar.Event {
	item := &calendar.Event{
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
	}

	tz := e.TimeZone
	if tz == "" {
		tz = c.timezone
	}

	// RFC3339 carries the offset; timeZone keeps recurring edits and UI display in the operating zone.
	if !e.Start.IsZero() {
		item.Start = &calendar.EventDateTime{DateTime: e.Start.In(c.loc).Format(time.RFC3339), TimeZone: tz}
	}
	if !e.End.IsZero() {
		item.End = &calendar.EventDateTime{DateTime: e.End.In(c.loc).Format(time.RFC3339), TimeZone: tz}
	}
	if len(e.Private) > 0 {
		item.ExtendedProperties = &calendar.EventExtendedProperties{Private: e.Private}
	}
	return item
}

func wrapNotFound(err error, action string) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) && (gErr.Code == http.StatusNotFound || gErr.Code == http.StatusGone) {
		return ErrEventNotFound
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// ListEvents returns events in a time window ordered by start time, following every page.
func (c *Client) ListEvents(ctx context.Context, opts ListOptions) ([]Event, error) {
	service, err := c.svc()
	if err != nil {
		return nil, err
	}
	if opts.TimeMax.Before(opts.TimeMin) {
		return nil, fmt.Errorf("invalid range: time_max is before time_min")
	}

	var result []Event
	pageToken := ""

	for {
		call := service.Events.List(c.calendarID).
			TimeMin(opts.TimeMin.Format(time.RFC3339)).
			TimeMax(opts.TimeMax.Format(time.RFC3339)).
			SingleEvents(true).
			ShowDeleted(false).
			OrderBy("startTime").
			Context(ctx)
		if opts.Query != "" {
			call = call.Q(opts.Query)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		events, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list events: %w", err)
		}

		for _, item := range events.Items {
			if item == nil || item.Status == "cancelled" {
				continue
			}

			event, parseErr := fromCalendarEvent(item, c.loc)
			if parseErr != nil {
				c.logger.Debug("skipping malformed event", "event_id", item.Id, "error", parseErr)
				continue
			}
			result = append(result, event)
		}

		if events.NextPageToken == "" {
			break
		}
		pageToken = events.NextPageToken
	}

	return result, nil
}

// GetEvent retrieves a single event.
func (c *Client) GetEvent(ctx context.Context, eventID string) (*Event, error) {
	service, err := c.svc()
	if err != nil {
		return nil, err
	}
	if eventID == "" {
		return nil, fmt.Errorf("event id is required")
	}

	item, err := service.Events.Get(c.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, wrapNotFound(err, "get event")
	}

	// Cancelled means the event was deleted/cancelled on Google Calendar side.
	if item.Status == "cancelled" {
		return nil, ErrEventNotFound
	}

	event, err := fromCalendarEvent(item, c.loc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event times: %w", err)
	}
	return &event, nil
}

// InsertEvent creates an event and returns it as stored.
func (c *Client) InsertEvent(ctx context.Context, e Event) (*Event, error) {
	service, err := c.svc()
	if err != nil {
		return nil, err
	}

	created, err := service.Events.Insert(c.calendarID, c.toCalendarEvent(e)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	event, err := fromCalendarEvent(created, c.loc)
	if err != nil {
		// The event exists; fall back to what was requested.
		e.ID = created.Id
		return &e, nil
	}
	return &event, nil
}

// UpdateEvent patches the non-zero fields of e onto the existing event. The event id is retained.
func (c *Client) UpdateEvent(ctx context.Context, e Event) (*Event, error) {
	service, err := c.svc()
	if err != nil {
		return nil, err
	}
	if e.ID == "" {
		return nil, fmt.Errorf("event id is required")
	}

	updated, err := service.Events.Patch(c.calendarID, e.ID, c.toCalendarEvent(e)).Context(ctx).Do()
	if err != nil {
		return nil, wrapNotFound(err, "update event")
	}

	event, err := fromCalendarEvent(updated, c.loc)
	if err != nil {
		return &e, nil
	}
	return &event, nil
}

// DeleteEvent deletes an event.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	service, err := c.svc()
	if err != nil {
		return err
	}
	if eventID == "" {
		return fmt.Errorf("event id is required")
	}

	if err := service.Events.Delete(c.calendarID, eventID).Context(ctx).Do(); err != nil {
		return wrapNotFound(err, "delete event")
	}
	return nil
}
