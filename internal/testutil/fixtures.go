package testutil

import (
	"fmt"
	"time"

	"github.com/omriShneor/alfred_booking/internal/gcal"
)

// AppointmentBuilder builds calendar events shaped like booked appointments
type AppointmentBuilder struct {
	id          string
	clientName  string
	clientEmail string
	purpose     string
	start       time.Time
	duration    time.Duration
	legacy      bool
	allDay      bool
	description string
}

// NewAppointmentBuilder creates a builder with defaults, starting at start
func NewAppointmentBuilder(start time.Time) *AppointmentBuilder {
	return &AppointmentBuilder{
		clientName:  "Test Client",
		clientEmail: "client@example.com",
		purpose:     "Consultation",
		start:       start,
		duration:    30 * time.Minute,
	}
}

// WithID sets the event id
func (b *AppointmentBuilder) WithID(id string) *AppointmentBuilder {
	b.id = id
	return b
}

// WithClient sets the client name and email
func (b *AppointmentBuilder) WithClient(name, email string) *AppointmentBuilder {
	b.clientName = name
	b.clientEmail = email
	return b
}

// WithPurpose sets the purpose
func (b *AppointmentBuilder) WithPurpose(purpose string) *AppointmentBuilder {
	b.purpose = purpose
	return b
}

// WithDuration sets the event length
func (b *AppointmentBuilder) WithDuration(d time.Duration) *AppointmentBuilder {
	b.duration = d
	return b
}

// WithDescription overrides the generated description
func (b *AppointmentBuilder) WithDescription(desc string) *AppointmentBuilder {
	b.description = desc
	return b
}

// Legacy omits the private extended properties, leaving only the description block
func (b *AppointmentBuilder) Legacy() *AppointmentBuilder {
	b.legacy = true
	return b
}

// AllDay marks the event as an all-day entry
func (b *AppointmentBuilder) AllDay() *AppointmentBuilder {
	b.allDay = true
	return b
}

// Build returns the event
func (b *AppointmentBuilder) Build() gcal.Event {
	desc := b.description
	if desc == "" {
		desc = fmt.Sprintf("Client: %s\nEmail: %s\nPurpose: %s\nID: %s\n\nCreated: %s",
			b.clientName, b.clientEmail, b.purpose, b.id, b.start.Format("2006-01-02 15:04:05"))
	}

	event := gcal.Event{
		ID:          b.id,
		Summary:     fmt.Sprintf("%s - %s", b.purpose, b.clientName),
		Description: desc,
		Start:       b.start,
		End:         b.start.Add(b.duration),
		AllDay:      b.allDay,
	}
	if b.allDay {
		y, m, d := b.start.Date()
		event.Start = time.Date(y, m, d, 0, 0, 0, 0, b.start.Location())
		event.End = event.Start.AddDate(0, 0, 1)
	}
	if !b.legacy {
		event.Private = map[string]string{
			"client_name":    b.clientName,
			"client_email":   b.clientEmail,
			"purpose":        b.purpose,
			"appointment_id": b.id,
		}
	}
	return event
}

// MustAdd builds the event and stores it in cal
func (b *AppointmentBuilder) MustAdd(cal *FakeCalendar) gcal.Event {
	return cal.AddEvent(b.Build())
}
