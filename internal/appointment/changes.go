package appointment

import (
	"context"
	"fmt"
	"strings"

	"github.com/omriShneor/alfred_booking/internal/database"
	"github.com/omriShneor/alfred_booking/internal/gcal"
	"github.com/omriShneor/alfred_booking/internal/invite"
	"github.com/omriShneor/alfred_booking/internal/notify"
	"github.com/omriShneor/alfred_booking/internal/timeutil"
)

// Modify moves an appointment identified by its calendar event id. Missing new values keep the
// current date or time. No email is sent.
func (s *Service) Modify(ctx context.Context, req ModifyRequest) *ModifyResult {
	res := &ModifyResult{AppointmentID: req.AppointmentID}

	if !s.CalendarConfigured() {
		res.Error = MsgCalendarNotConfigured
		return res
	}

	callCtx, cancel := s.callCtx(ctx)
	event, err := s.calendar.GetEvent(callCtx, req.AppointmentID)
	cancel()
	if err != nil {
		if gcal.IsEventNotFound(err) {
			res.Error = MsgNotFound
			return res
		}
		res.Error = fmt.Sprintf("Failed to update Google Calendar: %v", err)
		return res
	}
	if event == nil {
		res.Error = MsgNotFound
		return res
	}
	if event.AllDay || event.Start.IsZero() {
		res.Error = MsgInvalidFormat
		return res
	}

	current := event.Start.In(s.loc())
	res.OldDate = current.Format(timeutil.DateLayout)
	res.OldTime = current.Format(timeutil.ClockLayout)

	meta := s.metadata(*event)
	res.ClientName = meta.ClientName
	res.ClientEmail = meta.ClientEmail

	res.UpdatedDate = res.OldDate
	if strings.TrimSpace(req.NewDate) != "" {
		res.UpdatedDate = s.norm.Date(req.NewDate)
	}
	res.UpdatedTime = res.OldTime
	if strings.TrimSpace(req.NewTime) != "" {
		res.UpdatedTime = s.norm.Time(req.NewTime)
	}

	start, err := timeutil.CombineDateAndClock(res.UpdatedDate, res.UpdatedTime, s.loc())
	if err != nil {
		res.Error = fmt.Sprintf("Failed to update Google Calendar: %v", err)
		return res
	}

	description := fmt.Sprintf("%s\n\nModified via AI Assistant on %s", event.Description, s.auditStamp())

	callCtx, cancel = s.callCtx(ctx)
	_, err = s.calendar.UpdateEvent(callCtx, gcal.Event{
		ID:          event.ID,
		Description: description,
		Start:       start,
		End:         start.Add(Duration),
	})
	cancel()
	if err != nil {
		s.logger.Error("failed to modify calendar event", "event_id", event.ID, "error", err)
		res.Error = fmt.Sprintf("Failed to update Google Calendar: %v", err)
		return res
	}

	res.Success = true
	s.logger.Info("appointment modified", "event_id", event.ID, "date", res.UpdatedDate, "time", res.UpdatedTime)
	s.recordMoved(event.ID, database.HistoryActionModified, start,
		fmt.Sprintf("Moved from %s %s to %s %s", res.OldDate, res.OldTime, res.UpdatedDate, res.UpdatedTime))

	return res
}

// Reschedule finds the client's appointment on the old date and hour and moves it.
func (s *Service) Reschedule(ctx context.Context, req RescheduleRequest) *RescheduleResult {
	clientEmail := strings.ToLower(strings.TrimSpace(req.ClientEmail))
	res := &RescheduleResult{
		ClientEmail: clientEmail,
		OldDate:     s.norm.Date(req.OldDate),
		OldTime:     s.norm.Time(req.OldTime),
		NewDate:     s.norm.Date(req.NewDate),
		NewTime:     s.norm.Time(req.NewTime),
	}

	if !s.CalendarConfigured() {
		res.Error = MsgCalendarNotConfigured
		return res
	}

	match, err := s.findAppointment(ctx, clientEmail, res.OldDate, res.OldTime)
	if err != nil {
		res.Error = fmt.Sprintf("Failed to reschedule appointment in Google Calendar: %v", err)
		return res
	}
	if match.Event == nil {
		res.Error = MsgNoMatch
		return res
	}
	res.Ambiguous = match.Ambiguous
	res.CandidateCount = match.Candidates
	event := *match.Event

	start, err := timeutil.CombineDateAndClock(res.NewDate, res.NewTime, s.loc())
	if err != nil {
		res.Error = fmt.Sprintf("Failed to reschedule appointment in Google Calendar: %v", err)
		return res
	}

	description := fmt.Sprintf("%s\n\nRescheduled via AI Assistant on %s\nMoved from %s %s to %s %s",
		event.Description, s.auditStamp(), res.OldDate, res.OldTime, res.NewDate, res.NewTime)

	callCtx, cancel := s.callCtx(ctx)
	_, err = s.calendar.UpdateEvent(callCtx, gcal.Event{
		ID:          event.ID,
		Description: description,
		Start:       start,
		End:         start.Add(Duration),
	})
	cancel()
	if err != nil {
		s.logger.Error("failed to reschedule calendar event", "event_id", event.ID, "client_email", clientEmail, "error", err)
		res.Error = fmt.Sprintf("Failed to reschedule appointment in Google Calendar: %v", err)
		return res
	}

	meta := s.metadata(event)
	purpose := purposeOf(event, meta)

	res.Success = true
	res.Message = fmt.Sprintf("rescheduled appointment(s) for %s", clientEmail)
	res.RescheduledAppointments = []RescheduledAppointment{{
		Source:        sourceGoogleCalendar,
		AppointmentID: event.ID,
		OldDate:       res.OldDate,
		OldTime:       res.OldTime,
		NewDate:       res.NewDate,
		NewTime:       res.NewTime,
		Purpose:       purpose,
		ClientName:    meta.ClientName,
	}}
	res.TotalRescheduled = 1

	s.logger.Info("appointment rescheduled", "event_id", event.ID, "client_email", clientEmail,
		"date", res.NewDate, "time", res.NewTime)
	s.recordMoved(event.ID, database.HistoryActionRescheduled, start,
		fmt.Sprintf("Moved from %s %s to %s %s", res.OldDate, res.OldTime, res.NewDate, res.NewTime))

	details := notify.AppointmentDetails{
		ClientName:    meta.ClientName,
		ClientEmail:   clientEmail,
		Date:          res.NewDate,
		Time:          res.NewTime,
		Purpose:       purpose,
		AppointmentID: event.ID,
	}
	ics := s.buildInvite(details, start, invite.StatusConfirmed)
	res.EmailConfirmation = s.deliver(ctx, notify.RescheduledEmail(details, res.OldDate, res.OldTime, ics))

	return res
}

// Cancel finds the client's appointment on the date and hour and deletes it.
func (s *Service) Cancel(ctx context.Context, req CancelRequest) *CancelResult {
	clientEmail := strings.ToLower(strings.TrimSpace(req.ClientEmail))
	date := s.norm.Date(req.Date)
	clock := s.norm.Time(req.Time)
	res := &CancelResult{
		ClientEmail:   clientEmail,
		RequestedDate: date,
		RequestedTime: clock,
	}

	if !s.CalendarConfigured() {
		res.Error = MsgCalendarNotConfigured
		return res
	}

	match, err := s.findAppointment(ctx, clientEmail, date, clock)
	if err != nil {
		res.Error = fmt.Sprintf("Failed to cancel appointment from Google Calendar: %v", err)
		return res
	}
	if match.Event == nil {
		res.Error = MsgNoMatch
		return res
	}
	res.Ambiguous = match.Ambiguous
	res.CandidateCount = match.Candidates
	event := *match.Event

	callCtx, cancel := s.callCtx(ctx)
	err = s.calendar.DeleteEvent(callCtx, event.ID)
	cancel()
	if err != nil {
		s.logger.Error("failed to delete calendar event", "event_id", event.ID, "client_email", clientEmail, "error", err)
		res.Error = fmt.Sprintf("Failed to cancel appointment from Google Calendar: %v", err)
		return res
	}

	meta := s.metadata(event)
	purpose := purposeOf(event, meta)

	res.Success = true
	res.Message = fmt.Sprintf("cancelled appointment(s) for %s", clientEmail)
	res.CancelledDate = date
	res.CancelledTime = clock
	res.RequestedDate = ""
	res.RequestedTime = ""
	res.CancelledAppointments = []CancelledAppointment{{
		Source:        sourceGoogleCalendar,
		AppointmentID: event.ID,
		Date:          date,
		Time:          clock,
		Purpose:       purpose,
		ClientName:    meta.ClientName,
	}}
	res.TotalCancelled = 1

	s.logger.Info("appointment cancelled", "event_id", event.ID, "client_email", clientEmail, "date", date, "time", clock)
	s.recordCancelled(event.ID, fmt.Sprintf("Cancelled %s %s", date, clock))

	details := notify.AppointmentDetails{
		ClientName:    meta.ClientName,
		ClientEmail:   clientEmail,
		Date:          date,
		Time:          clock,
		Purpose:       purpose,
		AppointmentID: event.ID,
	}
	ics := s.buildInvite(details, event.Start, invite.StatusCancelled)
	res.EmailConfirmation = s.deliver(ctx, notify.CancelledEmail(details, ics))

	return res
}

// findAppointment lists the target day and applies the matcher. A date that cannot be resolved
// yields no match rather than an error.
func (s *Service) findAppointment(ctx context.Context, clientEmail, date, clock string) (Match, error) {
	if _, _, err := timeutil.DayBounds(date, s.loc()); err != nil {
		return Match{}, nil
	}

	events, err := s.dayEvents(ctx, date)
	if err != nil {
		s.logger.Warn("failed to list events", "client_email", clientEmail, "date", date, "error", err)
		return Match{}, err
	}

	match := SelectCandidate(FindCandidates(events, clientEmail, date, clock, s.loc()))
	if match.Ambiguous {
		s.logger.Warn("multiple appointments match",
			"client_email", clientEmail, "date", date, "time", clock,
			"candidates", match.Candidates, "event_id", match.Event.ID)
	}
	return match, nil
}
