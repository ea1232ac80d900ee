package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/omriShneor/alfred_booking/internal/database"
	"github.com/omriShneor/alfred_booking/internal/gcal"
)

func TestResolveMetadata_PrefersPrivateFields(t *testing.T) {
	e := gcal.Event{
		Description: "Client: Old Name\nEmail: old@example.com\nPurpose: Old\nID: old-id",
		Private: map[string]string{
			propClientName:    "Jane Doe",
			propClientEmail:   "jane@example.com",
			propPurpose:       "Checkup",
			propAppointmentID: "appt-1",
		},
	}
	rec := &database.Appointment{ClientName: "Stored", ClientEmail: "stored@example.com"}

	m := resolveMetadata(e, rec)
	assert.Equal(t, "Jane Doe", m.ClientName)
	assert.Equal(t, "jane@example.com", m.ClientEmail)
	assert.Equal(t, "Checkup", m.Purpose)
	assert.Equal(t, "appt-1", m.AppointmentID)
}

func TestResolveMetadata_FallsBackToRecord(t *testing.T) {
	e := gcal.Event{Description: "Client: Someone\nEmail: desc@example.com"}
	rec := &database.Appointment{
		AppointmentID: "appt-2",
		ClientEmail:   "stored@example.com",
		Purpose:       "Review",
	}

	m := resolveMetadata(e, rec)
	assert.Equal(t, unknownClient, m.ClientName)
	assert.Equal(t, "stored@example.com", m.ClientEmail)
	assert.Equal(t, "Review", m.Purpose)
	assert.Equal(t, "appt-2", m.AppointmentID)
}

func TestResolveMetadata_ParsesDescription(t *testing.T) {
	created := time.Date(2025, 8, 15, 10, 0, 0, 0, time.UTC)
	desc := buildDescription(Metadata{
		ClientName:    "Raj Kumar",
		ClientEmail:   "raj@example.com",
		Purpose:       "Tax filing",
		AppointmentID: "abc-123",
	}, created)

	m := resolveMetadata(gcal.Event{Description: desc}, nil)
	assert.Equal(t, "Raj Kumar", m.ClientName)
	assert.Equal(t, "raj@example.com", m.ClientEmail)
	assert.Equal(t, "Tax filing", m.Purpose)
	assert.Equal(t, "abc-123", m.AppointmentID)
}

func TestDescriptionField(t *testing.T) {
	tests := []struct {
		name   string
		desc   string
		prefix string
		want   string
	}{
		{"line start", "Client: A\nID: 42", "ID:", "42"},
		{"line start wins over embedded", "Purpose: see ID: wrong\nID: right", "ID:", "right"},
		{"embedded fallback", "notes Email: x@example.com", "Email:", "x@example.com"},
		{"missing", "Client: A", "Email:", ""},
		{"empty description", "", "Client:", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, descriptionField(tt.desc, tt.prefix))
		})
	}
}

func TestPurposeOf(t *testing.T) {
	assert.Equal(t, "Checkup", purposeOf(gcal.Event{Summary: "x"}, Metadata{Purpose: "Checkup"}))
	assert.Equal(t, "Checkup", purposeOf(gcal.Event{Summary: "Checkup - Jane"}, Metadata{ClientName: "Jane"}))
	assert.Equal(t, "No title", purposeOf(gcal.Event{}, Metadata{}))
}

func TestOwnedBy(t *testing.T) {
	structured := gcal.Event{Private: map[string]string{propClientEmail: "Jane@Example.com"}}
	legacy := gcal.Event{Description: "Client: Jane\nEmail: jane@example.com"}

	assert.True(t, ownedBy(structured, "jane@example.com"))
	assert.True(t, ownedBy(legacy, " JANE@example.com "))
	assert.False(t, ownedBy(legacy, "bob@example.com"))
	assert.False(t, ownedBy(legacy, ""))
}
