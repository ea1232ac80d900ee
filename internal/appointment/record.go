package appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/omriShneor/alfred_booking/internal/database"
	"github.com/omriShneor/alfred_booking/internal/gcal"
)

// Keys written to the event's private extended properties.
const (
	propClientName    = "client_name"
	propClientEmail   = "client_email"
	propPurpose       = "purpose"
	propAppointmentID = "appointment_id"
)

const unknownClient = "Unknown"

// Metadata identifies who an event belongs to.
type Metadata struct {
	ClientName    string
	ClientEmail   string
	Purpose       string
	AppointmentID string
}

func (m Metadata) private() map[string]string {
	return map[string]string{
		propClientName:    m.ClientName,
		propClientEmail:   m.ClientEmail,
		propPurpose:       m.Purpose,
		propAppointmentID: m.AppointmentID,
	}
}

// resolveMetadata reads extended properties first, then the stored record, then the description block.
func resolveMetadata(e gcal.Event, rec *database.Appointment) Metadata {
	if email := e.Private[propClientEmail]; email != "" {
		return Metadata{
			ClientName:    orUnknown(e.Private[propClientName]),
			ClientEmail:   email,
			Purpose:       e.Private[propPurpose],
			AppointmentID: e.Private[propAppointmentID],
		}
	}

	if rec != nil && rec.ClientEmail != "" {
		return Metadata{
			ClientName:    orUnknown(rec.ClientName),
			ClientEmail:   rec.ClientEmail,
			Purpose:       rec.Purpose,
			AppointmentID: rec.AppointmentID,
		}
	}

	return parseDescription(e.Description)
}

// parseDescription scans the legacy "Field: value" lines.
func parseDescription(desc string) Metadata {
	return Metadata{
		ClientName:    orUnknown(descriptionField(desc, "Client:")),
		ClientEmail:   descriptionField(desc, "Email:"),
		Purpose:       descriptionField(desc, "Purpose:"),
		AppointmentID: descriptionField(desc, "ID:"),
	}
}

// Line-start matches win so "ID:" is not found inside another field's value.
func descriptionField(desc, prefix string) string {
	for _, line := range strings.Split(desc, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), prefix); ok {
			return strings.TrimSpace(v)
		}
	}

	_, rest, ok := strings.Cut(desc, prefix)
	if !ok {
		return ""
	}
	line, _, _ := strings.Cut(rest, "\n")
	return strings.TrimSpace(line)
}

func buildDescription(m Metadata, created time.Time) string {
	return fmt.Sprintf("Client: %s\nEmail: %s\nPurpose: %s\nID: %s\n\nCreated: %s",
		m.ClientName, m.ClientEmail, m.Purpose, m.AppointmentID, created.Format("2006-01-02 15:04:05"))
}

func buildSummary(purpose, clientName string) string {
	return fmt.Sprintf("%s - %s", purpose, clientName)
}

// purposeOf prefers the recorded purpose and falls back to the summary without the client suffix.
func purposeOf(e gcal.Event, m Metadata) string {
	if m.Purpose != "" {
		return m.Purpose
	}
	if e.Summary == "" {
		return "No title"
	}
	return strings.ReplaceAll(e.Summary, " - "+m.ClientName, "")
}

// ownedBy reports whether the event belongs to email, via the structured field or the description text.
func ownedBy(e gcal.Event, email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	if strings.EqualFold(e.Private[propClientEmail], email) {
		return true
	}
	return strings.Contains(strings.ToLower(e.Description), email)
}

func orUnknown(name string) string {
	if name == "" {
		return unknownClient
	}
	return name
}
