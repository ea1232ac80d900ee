// Package appointment implements booking operations on top of a calendar and a mailer.
package appointment

import (
	"context"
	"time"

	"github.com/omriShneor/alfred_booking/internal/database"
	"github.com/omriShneor/alfred_booking/internal/gcal"
)

const (
	// SlotCount half-hour slots are offered each day starting at FirstSlotHour.
	SlotCount     = 16
	FirstSlotHour = 9
	SlotInterval  = 30 * time.Minute

	// Duration of every booked appointment.
	Duration = 30 * time.Minute

	queryLookback  = 30 * 24 * time.Hour
	queryLookahead = 60 * 24 * time.Hour

	sourceGoogleCalendar = "google_calendar"
	auditTimestampLayout = "2006-01-02 15:04:05 MST"
)

// Messages returned to the assistant in failed results.
const (
	MsgCalendarNotConfigured = "Google Calendar not configured"
	MsgEmailNotConfigured    = "Email service not configured"
	MsgNoMatch               = "No appointment found matching the specified criteria"
	MsgNotFound              = "Appointment not found"
	MsgInvalidFormat         = "Invalid appointment format"
)

// Calendar is the calendar collaborator. *gcal.Client satisfies it.
type Calendar interface {
	IsAuthenticated() bool
	ListEvents(ctx context.Context, opts gcal.ListOptions) ([]gcal.Event, error)
	GetEvent(ctx context.Context, eventID string) (*gcal.Event, error)
	InsertEvent(ctx context.Context, event gcal.Event) (*gcal.Event, error)
	UpdateEvent(ctx context.Context, event gcal.Event) (*gcal.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// Store keeps appointment records next to calendar events. *database.DB satisfies it.
type Store interface {
	UpsertAppointment(a *database.Appointment) error
	GetAppointment(eventID string) (*database.Appointment, error)
	UpdateAppointmentStart(eventID string, start time.Time) error
	MarkAppointmentCancelled(eventID string) error
	AddAppointmentHistory(eventID, action, detail string) error
}

// EmailResult is the outcome of one email send, nested in operation results.
type EmailResult struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code,omitempty"`
	Recipient  string `json:"recipient"`
	Subject    string `json:"subject,omitempty"`
	MessageID  string `json:"message_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

type AvailabilityResult struct {
	Success            bool     `json:"success"`
	Error              string   `json:"error,omitempty"`
	Date               string   `json:"date"`
	AvailableSlots     []string `json:"available_slots"`
	TotalSlots         int      `json:"total_slots"`
	BookedSlots        int      `json:"booked_slots"`
	CalendarIntegrated bool     `json:"calendar_integrated"`
}

type ScheduleRequest struct {
	Date        string
	Time        string
	Purpose     string
	ClientName  string
	ClientEmail string
}

type ScheduleResult struct {
	Success           bool         `json:"success"`
	Error             string       `json:"error,omitempty"`
	AppointmentID     string       `json:"appointment_id"`
	ConfirmedDate     string       `json:"confirmed_date"`
	ConfirmedTime     string       `json:"confirmed_time"`
	OriginalDate      string       `json:"original_date"`
	OriginalTime      string       `json:"original_time"`
	ClientName        string       `json:"client_name"`
	ClientEmail       string       `json:"client_email"`
	Purpose           string       `json:"purpose"`
	EmailConfirmation *EmailResult `json:"email_confirmation,omitempty"`
	GoogleCalendarID  string       `json:"google_calendar_id,omitempty"`
}

type ModifyRequest struct {
	AppointmentID string
	NewDate       string
	NewTime       string
}

type ModifyResult struct {
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
	AppointmentID string `json:"appointment_id"`
	OldDate       string `json:"old_date,omitempty"`
	OldTime       string `json:"old_time,omitempty"`
	UpdatedDate   string `json:"updated_date,omitempty"`
	UpdatedTime   string `json:"updated_time,omitempty"`
	ClientName    string `json:"client_name,omitempty"`
	ClientEmail   string `json:"client_email,omitempty"`
}

type RescheduleRequest struct {
	ClientEmail string
	OldDate     string
	OldTime     string
	NewDate     string
	NewTime     string
}

type RescheduledAppointment struct {
	Source        string `json:"source"`
	AppointmentID string `json:"appointment_id"`
	OldDate       string `json:"old_date"`
	OldTime       string `json:"old_time"`
	NewDate       string `json:"new_date"`
	NewTime       string `json:"new_time"`
	Purpose       string `json:"purpose"`
	ClientName    string `json:"client_name"`
}

type RescheduleResult struct {
	Success                 bool                     `json:"success"`
	Error                   string                   `json:"error,omitempty"`
	Message                 string                   `json:"message,omitempty"`
	RescheduledAppointments []RescheduledAppointment `json:"rescheduled_appointments,omitempty"`
	ClientEmail             string                   `json:"client_email"`
	OldDate                 string                   `json:"old_date"`
	OldTime                 string                   `json:"old_time"`
	NewDate                 string                   `json:"new_date"`
	NewTime                 string                   `json:"new_time"`
	TotalRescheduled        int                      `json:"total_rescheduled"`
	Ambiguous               bool                     `json:"ambiguous,omitempty"`
	CandidateCount          int                      `json:"candidate_count,omitempty"`
	EmailConfirmation       *EmailResult             `json:"email_confirmation,omitempty"`
}

type CancelRequest struct {
	ClientEmail string
	Date        string
	Time        string
}

type CancelledAppointment struct {
	Source        string `json:"source"`
	AppointmentID string `json:"appointment_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Purpose       string `json:"purpose"`
	ClientName    string `json:"client_name"`
}

type CancelResult struct {
	Success               bool                   `json:"success"`
	Error                 string                 `json:"error,omitempty"`
	Message               string                 `json:"message,omitempty"`
	CancelledAppointments []CancelledAppointment `json:"cancelled_appointments,omitempty"`
	ClientEmail           string                 `json:"client_email"`
	CancelledDate         string                 `json:"cancelled_date,omitempty"`
	CancelledTime         string                 `json:"cancelled_time,omitempty"`
	RequestedDate         string                 `json:"requested_date,omitempty"`
	RequestedTime         string                 `json:"requested_time,omitempty"`
	TotalCancelled        int                    `json:"total_cancelled"`
	Ambiguous             bool                   `json:"ambiguous,omitempty"`
	CandidateCount        int                    `json:"candidate_count,omitempty"`
	EmailConfirmation     *EmailResult           `json:"email_confirmation,omitempty"`
}

// UserAppointment is one event owned by a client.
type UserAppointment struct {
	Source        string    `json:"source"`
	AppointmentID string    `json:"appointment_id"`
	DateTime      time.Time `json:"datetime_str"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Purpose       string    `json:"purpose"`
	ClientName    string    `json:"client_name"`
	ClientEmail   string    `json:"client_email"`
	IsUpcoming    bool      `json:"is_upcoming"`
}

type UserAppointmentsResult struct {
	Success              bool              `json:"success"`
	Error                string            `json:"error,omitempty"`
	ClientEmail          string            `json:"client_email"`
	AllAppointments      []UserAppointment `json:"all_appointments"`
	UpcomingAppointments []UserAppointment `json:"upcoming_appointments"`
	PreviousAppointments []UserAppointment `json:"previous_appointments"`
	TotalCount           int               `json:"total_count"`
	UpcomingCount        int               `json:"upcoming_count"`
	PreviousCount        int               `json:"previous_count"`
}

// ListedAppointment is a calendar entry without client filtering.
type ListedAppointment struct {
	Source        string `json:"source"`
	AppointmentID string `json:"appointment_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Purpose       string `json:"purpose"`
	ClientName    string `json:"client_name,omitempty"`
}

type ListResult struct {
	Success      bool                `json:"success"`
	Error        string              `json:"error,omitempty"`
	Appointments []ListedAppointment `json:"appointments"`
	TotalCount   int                 `json:"total_count"`
	DateFilter   string              `json:"date_filter,omitempty"`
}
