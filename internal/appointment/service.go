package appointment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/omriShneor/alfred_booking/internal/database"
	"github.com/omriShneor/alfred_booking/internal/gcal"
	"github.com/omriShneor/alfred_booking/internal/normalize"
	"github.com/omriShneor/alfred_booking/internal/notify"
	"github.com/omriShneor/alfred_booking/internal/timeutil"
)

// Options wires a Service. Calendar, Mailer and Store may be nil.
type Options struct {
	Calendar   Calendar
	Mailer     notify.Mailer
	Store      Store
	Normalizer *normalize.Normalizer
	// Organizer is the sender address written into calendar invites.
	Organizer string
	// Timeout bounds each calendar and email call.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Service runs appointment operations. Domain failures are reported in results, never as errors.
type Service struct {
	calendar  Calendar
	mailer    notify.Mailer
	store     Store
	norm      *normalize.Normalizer
	organizer string
	timeout   time.Duration
	logger    *slog.Logger
	newID     func() string
}

func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	norm := opts.Normalizer
	if norm == nil {
		norm = normalize.New(nil, normalize.MonthFirst)
	}

	return &Service{
		calendar:  opts.Calendar,
		mailer:    opts.Mailer,
		store:     opts.Store,
		norm:      norm,
		organizer: opts.Organizer,
		timeout:   opts.Timeout,
		logger:    logger.With("component", "appointment"),
		newID:     uuid.NewString,
	}
}

// Normalizer exposes the date/time normalizer used by the service.
func (s *Service) Normalizer() *normalize.Normalizer {
	return s.norm
}

// CalendarConfigured reports whether calendar calls can be attempted.
func (s *Service) CalendarConfigured() bool {
	return s.calendar != nil && s.calendar.IsAuthenticated()
}

// EmailConfigured reports whether email can be sent.
func (s *Service) EmailConfigured() bool {
	return s.mailer != nil && s.mailer.IsConfigured()
}

func (s *Service) loc() *time.Location {
	return s.norm.Location()
}

func (s *Service) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// dayEvents lists the events of one operating-zone day.
func (s *Service) dayEvents(ctx context.Context, date string) ([]gcal.Event, error) {
	start, end, err := timeutil.DayBounds(date, s.loc())
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.callCtx(ctx)
	defer cancel()
	return s.calendar.ListEvents(ctx, gcal.ListOptions{TimeMin: start, TimeMax: end})
}

// CheckAvailability returns the free half-hour slots of a day.
func (s *Service) CheckAvailability(ctx context.Context, date string) *AvailabilityResult {
	normalized := s.norm.Date(date)
	res := &AvailabilityResult{
		Date:           normalized,
		AvailableSlots: []string{},
		TotalSlots:     SlotCount,
	}

	dayStart, _, dateErr := timeutil.DayBounds(normalized, s.loc())

	// Without a calendar every slot is reported open so the day never reads as fully booked.
	if !s.CalendarConfigured() {
		res.Error = MsgCalendarNotConfigured
		if dateErr == nil {
			res.AvailableSlots = slotGrid(dayStart, nil)
		}
		return res
	}
	res.CalendarIntegrated = true

	if dateErr != nil {
		res.Error = fmt.Sprintf("Could not understand the date %q", date)
		return res
	}

	events, err := s.dayEvents(ctx, normalized)
	if err != nil {
		s.logger.Warn("failed to fetch calendar events", "date", normalized, "error", err)
		res.Error = fmt.Sprintf("Failed to fetch calendar events: %v", err)
		return res
	}

	// Booked times keep full minutes; a 09:10 event does not block 09:00.
	booked := make(map[string]bool)
	for _, e := range events {
		if e.AllDay {
			continue
		}
		booked[e.Start.In(s.loc()).Format(timeutil.ClockLayout)] = true
	}

	res.AvailableSlots = slotGrid(dayStart, booked)

	res.BookedSlots = len(booked)
	res.Success = true
	return res
}

// Schedule books a new appointment and emails a confirmation with an invite.
func (s *Service) Schedule(ctx context.Context, req ScheduleRequest) *ScheduleResult {
	date := s.norm.Date(req.Date)
	clock := s.norm.Time(req.Time)
	clientEmail := strings.TrimSpace(req.ClientEmail)

	res := &ScheduleResult{
		ConfirmedDate: date,
		ConfirmedTime: clock,
		OriginalDate:  req.Date,
		OriginalTime:  req.Time,
		ClientName:    req.ClientName,
		ClientEmail:   clientEmail,
		Purpose:       req.Purpose,
	}

	if !s.CalendarConfigured() {
		res.Error = MsgCalendarNotConfigured
		return res
	}

	localID := s.newID()
	res.AppointmentID = localID

	start, err := timeutil.CombineDateAndClock(date, clock, s.loc())
	if err != nil {
		res.Error = fmt.Sprintf("Failed to create appointment: %v", err)
		return res
	}

	meta := Metadata{
		ClientName:    req.ClientName,
		ClientEmail:   clientEmail,
		Purpose:       req.Purpose,
		AppointmentID: localID,
	}

	callCtx, cancel := s.callCtx(ctx)
	created, err := s.calendar.InsertEvent(callCtx, gcal.Event{
		Summary:     buildSummary(req.Purpose, req.ClientName),
		Description: buildDescription(meta, s.norm.Now()),
		Start:       start,
		End:         start.Add(Duration),
		Private:     meta.private(),
	})
	cancel()
	if err != nil {
		s.logger.Error("failed to create calendar event", "client_email", clientEmail, "date", date, "time", clock, "error", err)
		res.Error = fmt.Sprintf("Failed to create appointment: %v", err)
		return res
	}

	if created.ID != "" {
		res.AppointmentID = created.ID
		res.GoogleCalendarID = created.ID
	}
	res.Success = true

	s.logger.Info("appointment scheduled", "event_id", created.ID, "client_email", clientEmail, "date", date, "time", clock)

	s.recordScheduled(created.ID, meta, start)

	res.EmailConfirmation = s.sendConfirmation(ctx, notify.AppointmentDetails{
		ClientName:    req.ClientName,
		ClientEmail:   clientEmail,
		Date:          date,
		Time:          clock,
		Purpose:       req.Purpose,
		AppointmentID: res.AppointmentID,
	}, start)

	return res
}

// slotGrid lists the day's slots that are not in booked.
func slotGrid(dayStart time.Time, booked map[string]bool) []string {
	slots := []string{}
	first := dayStart.Add(FirstSlotHour * time.Hour)
	for i := 0; i < SlotCount; i++ {
		slot := first.Add(time.Duration(i) * SlotInterval).Format(timeutil.ClockLayout)
		if !booked[slot] {
			slots = append(slots, slot)
		}
	}
	return slots
}

// metadata resolves who owns an event, consulting the store when structured fields are missing.
func (s *Service) metadata(e gcal.Event) Metadata {
	var rec *database.Appointment
	if e.Private[propClientEmail] == "" && s.store != nil {
		r, err := s.store.GetAppointment(e.ID)
		if err != nil {
			s.logger.Warn("failed to read appointment record", "event_id", e.ID, "error", err)
		}
		rec = r
	}
	return resolveMetadata(e, rec)
}

func (s *Service) auditStamp() string {
	return s.norm.Now().Format(auditTimestampLayout)
}

func (s *Service) recordScheduled(eventID string, meta Metadata, start time.Time) {
	if s.store == nil || eventID == "" {
		return
	}
	err := s.store.UpsertAppointment(&database.Appointment{
		EventID:       eventID,
		AppointmentID: meta.AppointmentID,
		ClientName:    meta.ClientName,
		ClientEmail:   meta.ClientEmail,
		Purpose:       meta.Purpose,
		StartTime:     start,
	})
	if err != nil {
		s.logger.Warn("failed to store appointment record", "event_id", eventID, "error", err)
		return
	}
	s.addHistory(eventID, database.HistoryActionScheduled, start.In(s.loc()).Format(timeutil.DateLayout+" "+timeutil.ClockLayout))
}

func (s *Service) recordMoved(eventID, action string, start time.Time, detail string) {
	if s.store == nil {
		return
	}
	if err := s.store.UpdateAppointmentStart(eventID, start); err != nil {
		s.logger.Warn("failed to update appointment record", "event_id", eventID, "error", err)
	}
	s.addHistory(eventID, action, detail)
}

func (s *Service) recordCancelled(eventID, detail string) {
	if s.store == nil {
		return
	}
	if err := s.store.MarkAppointmentCancelled(eventID); err != nil {
		s.logger.Warn("failed to mark appointment cancelled", "event_id", eventID, "error", err)
	}
	s.addHistory(eventID, database.HistoryActionCancelled, detail)
}

func (s *Service) addHistory(eventID, action, detail string) {
	if err := s.store.AddAppointmentHistory(eventID, action, detail); err != nil {
		s.logger.Warn("failed to add appointment history", "event_id", eventID, "action", action, "error", err)
	}
}
