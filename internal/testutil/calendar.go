package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/omriShneor/alfred_booking/internal/gcal"
)

// FakeCalendar simulates the Google Calendar API in memory. It follows the API's listing
// semantics: an event is returned when it ends after TimeMin and starts before TimeMax,
// and Query is a case-insensitive substring match over the event's text and private fields.
type FakeCalendar struct {
	mu            sync.Mutex
	authenticated bool
	nextID        int
	events        []gcal.Event
	failures      map[string]error
	calls         map[string]int
}

// NewFakeCalendar creates an authenticated, empty calendar
func NewFakeCalendar() *FakeCalendar {
	return &FakeCalendar{
		authenticated: true,
		failures:      make(map[string]error),
		calls:         make(map[string]int),
	}
}

// IsAuthenticated returns whether the fake client is authenticated
func (f *FakeCalendar) IsAuthenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authenticated
}

// SetAuthenticated sets the authentication state
func (f *FakeCalendar) SetAuthenticated(auth bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authenticated = auth
}

// FailOn makes every later call of the named operation ("list", "get", "insert",
// "update", "delete") return err. A nil err clears the failure.
func (f *FakeCalendar) FailOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, op)
		return
	}
	f.failures[op] = err
}

// Calls returns how many times the named operation was invoked
func (f *FakeCalendar) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// AddEvent stores an event, assigning an id when it has none
func (f *FakeCalendar) AddEvent(event gcal.Event) gcal.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.add(event)
}

// GetEvents returns a copy of every stored event
func (f *FakeCalendar) GetEvents() []gcal.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]gcal.Event, len(f.events))
	for i, e := range f.events {
		out[i] = copyEvent(e)
	}
	return out
}

// ClearEvents removes every stored event
func (f *FakeCalendar) ClearEvents() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
}

func (f *FakeCalendar) ListEvents(_ context.Context, opts gcal.ListOptions) ([]gcal.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("list"); err != nil {
		return nil, err
	}

	query := strings.ToLower(opts.Query)
	var out []gcal.Event
	for _, e := range f.events {
		if !opts.TimeMin.IsZero() && !e.End.After(opts.TimeMin) {
			continue
		}
		if !opts.TimeMax.IsZero() && !e.Start.Before(opts.TimeMax) {
			continue
		}
		if query != "" && !strings.Contains(searchText(e), query) {
			continue
		}
		out = append(out, copyEvent(e))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

func (f *FakeCalendar) GetEvent(_ context.Context, eventID string) (*gcal.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("get"); err != nil {
		return nil, err
	}

	i := f.indexOf(eventID)
	if i < 0 {
		return nil, gcal.ErrEventNotFound
	}
	event := copyEvent(f.events[i])
	return &event, nil
}

func (f *FakeCalendar) InsertEvent(_ context.Context, event gcal.Event) (*gcal.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("insert"); err != nil {
		return nil, err
	}

	event.ID = ""
	created := f.add(event)
	return &created, nil
}

// UpdateEvent applies patch semantics: zero fields keep their stored values.
func (f *FakeCalendar) UpdateEvent(_ context.Context, event gcal.Event) (*gcal.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("update"); err != nil {
		return nil, err
	}

	i := f.indexOf(event.ID)
	if i < 0 {
		return nil, gcal.ErrEventNotFound
	}

	stored := &f.events[i]
	if event.Summary != "" {
		stored.Summary = event.Summary
	}
	if event.Description != "" {
		stored.Description = event.Description
	}
	if event.Location != "" {
		stored.Location = event.Location
	}
	if !event.Start.IsZero() {
		stored.Start = event.Start
		stored.AllDay = false
	}
	if !event.End.IsZero() {
		stored.End = event.End
	}
	for k, v := range event.Private {
		if stored.Private == nil {
			stored.Private = make(map[string]string)
		}
		stored.Private[k] = v
	}

	updated := copyEvent(*stored)
	return &updated, nil
}

func (f *FakeCalendar) DeleteEvent(_ context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("delete"); err != nil {
		return err
	}

	i := f.indexOf(eventID)
	if i < 0 {
		return gcal.ErrEventNotFound
	}
	f.events = append(f.events[:i], f.events[i+1:]...)
	return nil
}

// begin counts the call and returns the injected failure, if any. Callers hold mu.
func (f *FakeCalendar) begin(op string) error {
	f.calls[op]++
	return f.failures[op]
}

func (f *FakeCalendar) add(event gcal.Event) gcal.Event {
	if event.ID == "" {
		f.nextID++
		event.ID = fmt.Sprintf("evt-%d", f.nextID)
	}
	event = copyEvent(event)
	f.events = append(f.events, event)
	return copyEvent(event)
}

func (f *FakeCalendar) indexOf(eventID string) int {
	for i, e := range f.events {
		if e.ID == eventID {
			return i
		}
	}
	return -1
}

func searchText(e gcal.Event) string {
	parts := []string{e.Summary, e.Description, e.Location}
	for _, v := range e.Private {
		parts = append(parts, v)
	}
	return strings.ToLower(strings.Join(parts, "\n"))
}

func copyEvent(e gcal.Event) gcal.Event {
	if e.Private != nil {
		private := make(map[string]string, len(e.Private))
		for k, v := range e.Private {
			private[k] = v
		}
		e.Private = private
	}
	return e
}
