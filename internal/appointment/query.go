package appointment

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/omriShneor/alfred_booking/internal/gcal"
	"github.com/omriShneor/alfred_booking/internal/timeutil"
)

// GetUserAppointments returns a client's appointments from 30 days ago to 60 days ahead,
// split into upcoming and previous.
func (s *Service) GetUserAppointments(ctx context.Context, clientEmail string) *UserAppointmentsResult {
	clientEmail = strings.ToLower(strings.TrimSpace(clientEmail))
	res := &UserAppointmentsResult{
		ClientEmail:          clientEmail,
		AllAppointments:      []UserAppointment{},
		UpcomingAppointments: []UserAppointment{},
		PreviousAppointments: []UserAppointment{},
	}

	if !s.CalendarConfigured() {
		res.Error = MsgCalendarNotConfigured
		return res
	}

	now := s.norm.Now()
	callCtx, cancel := s.callCtx(ctx)
	events, err := s.calendar.ListEvents(callCtx, gcal.ListOptions{
		TimeMin: now.Add(-queryLookback),
		TimeMax: now.Add(queryLookahead),
		Query:   clientEmail,
	})
	cancel()
	if err != nil {
		s.logger.Warn("failed to fetch client appointments", "client_email", clientEmail, "error", err)
		res.Error = fmt.Sprintf("Could not fetch Google Calendar events: %v", err)
		return res
	}

	for _, e := range events {
		if e.AllDay || !ownedBy(e, clientEmail) {
			continue
		}

		meta := s.metadata(e)
		start := e.Start.In(s.loc())
		res.AllAppointments = append(res.AllAppointments, UserAppointment{
			Source:        sourceGoogleCalendar,
			AppointmentID: e.ID,
			DateTime:      start,
			Date:          start.Format(timeutil.DateLayout),
			Time:          start.Format(timeutil.ClockLayout),
			Purpose:       purposeOf(e, meta),
			ClientName:    meta.ClientName,
			ClientEmail:   clientEmail,
			IsUpcoming:    start.After(now),
		})
	}

	sort.SliceStable(res.AllAppointments, func(i, j int) bool {
		return res.AllAppointments[i].DateTime.Before(res.AllAppointments[j].DateTime)
	})

	for _, a := range res.AllAppointments {
		if a.IsUpcoming {
			res.UpcomingAppointments = append(res.UpcomingAppointments, a)
		} else {
			res.PreviousAppointments = append(res.PreviousAppointments, a)
		}
	}

	res.TotalCount = len(res.AllAppointments)
	res.UpcomingCount = len(res.UpcomingAppointments)
	res.PreviousCount = len(res.PreviousAppointments)
	res.Success = true
	return res
}

// ListAppointments lists every timed event on a date, or in the default query window when date is empty.
func (s *Service) ListAppointments(ctx context.Context, date string) *ListResult {
	res := &ListResult{Appointments: []ListedAppointment{}}

	if !s.CalendarConfigured() {
		res.Error = MsgCalendarNotConfigured
		return res
	}

	opts := gcal.ListOptions{}
	if strings.TrimSpace(date) != "" {
		res.DateFilter = s.norm.Date(date)
		start, end, err := timeutil.DayBounds(res.DateFilter, s.loc())
		if err != nil {
			res.Error = fmt.Sprintf("Could not understand the date %q", date)
			return res
		}
		opts.TimeMin, opts.TimeMax = start, end
	} else {
		now := s.norm.Now()
		opts.TimeMin, opts.TimeMax = now.Add(-queryLookback), now.Add(queryLookahead)
	}

	callCtx, cancel := s.callCtx(ctx)
	events, err := s.calendar.ListEvents(callCtx, opts)
	cancel()
	if err != nil {
		res.Error = fmt.Sprintf("Could not fetch Google Calendar events: %v", err)
		return res
	}

	for _, e := range events {
		if e.AllDay {
			continue
		}
		meta := s.metadata(e)
		start := e.Start.In(s.loc())
		listed := ListedAppointment{
			Source:        sourceGoogleCalendar,
			AppointmentID: e.ID,
			Date:          start.Format(timeutil.DateLayout),
			Time:          start.Format(timeutil.ClockLayout),
			Purpose:       purposeOf(e, meta),
		}
		if meta.ClientEmail != "" {
			listed.ClientName = meta.ClientName
		}
		res.Appointments = append(res.Appointments, listed)
	}

	res.TotalCount = len(res.Appointments)
	res.Success = true
	return res
}
