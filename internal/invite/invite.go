// Package invite renders iCalendar attachments for appointment emails.
package invite

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

const (
	ProductID = "-//Appointment System//EN"
	uidDomain = "appointmentbookingsystem.com"

	defaultDuration = 30 * time.Minute
	defaultLocation = "To be confirmed"
)

// Status decides the calendar method and event status of the invite.
type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

// Invite holds the appointment fields rendered into the VEVENT.
type Invite struct {
	AppointmentID string
	ClientName    string
	ClientEmail   string
	Purpose       string
	Start         time.Time
	Duration      time.Duration
	Organizer     string
	Status        Status
	// Stamp is DTSTAMP; zero means now.
	Stamp time.Time
}

// UID returns the stable invite identifier for an appointment id.
func UID(appointmentID string) string {
	return fmt.Sprintf("%s@%s", appointmentID, uidDomain)
}

// Build renders inv as an iCalendar document. Cancellations use METHOD:CANCEL and SEQUENCE:1
// so clients replace the original REQUEST.
func Build(inv Invite) (string, error) {
	if inv.AppointmentID == "" {
		return "", fmt.Errorf("appointment id is required")
	}
	if inv.Start.IsZero() {
		return "", fmt.Errorf("start time is required")
	}

	duration := inv.Duration
	if duration <= 0 {
		duration = defaultDuration
	}
	stamp := inv.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	method, sequence := ical.MethodRequest, "0"
	status := StatusConfirmed
	if inv.Status == StatusCancelled {
		method, sequence = ical.MethodCancel, "1"
		status = StatusCancelled
	}

	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(method)

	event := cal.AddEvent(UID(inv.AppointmentID))
	event.SetDtStampTime(stamp)
	event.SetStartAt(inv.Start)
	event.SetEndAt(inv.Start.Add(duration))
	event.SetSummary("Appointment: " + inv.Purpose)
	event.SetDescription(description(inv))
	event.SetLocation(defaultLocation)
	event.SetProperty(ical.ComponentPropertyPriority, "5")
	event.SetProperty(ical.ComponentPropertyStatus, string(status))
	event.SetProperty(ical.ComponentPropertySequence, sequence)

	if inv.Organizer != "" {
		event.SetOrganizer("mailto:"+inv.Organizer, ical.WithCN("Appointment System"))
	}
	if inv.ClientEmail != "" {
		event.AddAttendee(inv.ClientEmail, ical.WithCN(inv.ClientName), ical.WithRSVP(status == StatusConfirmed))
	}

	return cal.Serialize(), nil
}

func description(inv Invite) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Appointment with %s\n", inv.ClientName)
	fmt.Fprintf(&b, "Purpose: %s\n", inv.Purpose)
	fmt.Fprintf(&b, "Appointment ID: %s", inv.AppointmentID)
	return b.String()
}
