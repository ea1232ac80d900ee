package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/omriShneor/alfred_booking/internal/agent"
	"github.com/omriShneor/alfred_booking/internal/appointment"
)

// Tool names are part of the contract with existing prompts and must not change.
const (
	NameCheckAvailability     = "check_availability"
	NameScheduleAppointment   = "schedule_appointment"
	NameModifyAppointment     = "modify_appointment"
	NameSendEmail             = "send_email"
	NameGetUserAppointments   = "get_user_appointments"
	NameCancelAppointment     = "cancel_appointment"
	NameRescheduleAppointment = "reschedule_appointment"
)

const (
	relativeDateHint = "Can be relative like 'today', 'tomorrow' or specific like '2025-08-15'"
	timeHint         = "Supports formats like '3 PM', '15:00', etc."
)

// CheckAvailabilityTool lists free half-hour slots on a day
var CheckAvailabilityTool = agent.Tool{
	Name:        NameCheckAvailability,
	Description: "Check which half-hour appointment slots between 09:00 and 17:00 are free on a date. " + relativeDateHint + ".",
	InputSchema: agent.BuildJSONSchema("object", map[string]any{
		"date": agent.PropertyString(""),
	}, []string{"date"}),
}

// ScheduleAppointmentTool books a new appointment
var ScheduleAppointmentTool = agent.Tool{
	Name:        NameScheduleAppointment,
	Description: "Schedule a new appointment. Supports relative dates like 'today', 'tomorrow', 'next Monday', etc. and flexible time formats like '3 PM', '15:00', '9am'.",
	InputSchema: agent.BuildJSONSchema("object", map[string]any{
		"date":         agent.PropertyString("Date for the appointment. Can be relative like 'today', 'tomorrow', 'next Monday' or specific like '2025-08-15', 'Aug 15', etc."),
		"time":         agent.PropertyString("Time for the appointment. Supports formats like '3 PM', '15:00', '9am', '14:30', etc."),
		"purpose":      agent.PropertyString(""),
		"client_name":  agent.PropertyString(""),
		"client_email": agent.PropertyString(""),
	}, []string{"date", "time", "purpose", "client_name", "client_email"}),
}

// ModifyAppointmentTool moves an appointment by its calendar event id
var ModifyAppointmentTool = agent.Tool{
	Name: NameModifyAppointment,
	InputSchema: agent.BuildJSONSchema("object", map[string]any{
		"appointment_id": agent.PropertyString(""),
		"new_date":       agent.PropertyString(""),
		"new_time":       agent.PropertyString(""),
	}, []string{"appointment_id"}),
}

// SendEmailTool sends a plain HTML email
var SendEmailTool = agent.Tool{
	Name: NameSendEmail,
	InputSchema: agent.BuildJSONSchema("object", map[string]any{
		"to":      agent.PropertyString(""),
		"subject": agent.PropertyString(""),
		"body":    agent.PropertyString(""),
	}, []string{"to", "subject", "body"}),
}

// GetUserAppointmentsTool lists a client's recent and upcoming appointments
var GetUserAppointmentsTool = agent.Tool{
	Name: NameGetUserAppointments,
	InputSchema: agent.BuildJSONSchema("object", map[string]any{
		"client_email": agent.PropertyString(""),
	}, []string{"client_email"}),
}

// CancelAppointmentTool cancels a client's appointment at a date and time
var CancelAppointmentTool = agent.Tool{
	Name:        NameCancelAppointment,
	Description: "Cancel an existing appointment. Supports relative dates like 'today', 'tomorrow', 'next Monday', etc.",
	InputSchema: agent.BuildJSONSchema("object", map[string]any{
		"client_email": agent.PropertyString(""),
		"date":         agent.PropertyString("Date of the appointment to cancel. " + relativeDateHint),
		"time":         agent.PropertyString("Time of the appointment to cancel. " + timeHint),
	}, []string{"client_email", "date", "time"}),
}

// RescheduleAppointmentTool moves a client's appointment found by its current date and time
var RescheduleAppointmentTool = agent.Tool{
	Name:        NameRescheduleAppointment,
	Description: "Reschedule an existing appointment. Supports relative dates like 'today', 'tomorrow', 'next Monday', etc.",
	InputSchema: agent.BuildJSONSchema("object", map[string]any{
		"client_email": agent.PropertyString(""),
		"old_date":     agent.PropertyString("Current date of the appointment. " + relativeDateHint),
		"old_time":     agent.PropertyString("Current time of the appointment. " + timeHint),
		"new_date":     agent.PropertyString("New date for the appointment. " + relativeDateHint),
		"new_time":     agent.PropertyString("New time for the appointment. " + timeHint),
	}, []string{"client_email", "old_date", "old_time", "new_date", "new_time"}),
}

// Operations is the appointment service as seen by the tools. *appointment.Service satisfies it.
type Operations interface {
	CheckAvailability(ctx context.Context, date string) *appointment.AvailabilityResult
	Schedule(ctx context.Context, req appointment.ScheduleRequest) *appointment.ScheduleResult
	Modify(ctx context.Context, req appointment.ModifyRequest) *appointment.ModifyResult
	SendEmail(ctx context.Context, to, subject, body string) *appointment.EmailResult
	GetUserAppointments(ctx context.Context, clientEmail string) *appointment.UserAppointmentsResult
	Cancel(ctx context.Context, req appointment.CancelRequest) *appointment.CancelResult
	Reschedule(ctx context.Context, req appointment.RescheduleRequest) *appointment.RescheduleResult
}

// Handlers binds the booking tools to an appointment service
type Handlers struct {
	ops Operations
}

// NewHandlers creates tool handlers for ops
func NewHandlers(ops Operations) *Handlers {
	return &Handlers{ops: ops}
}

// Register adds all seven booking tools to the registry
func (h *Handlers) Register(reg *agent.ToolRegistry) error {
	bindings := []struct {
		tool    agent.Tool
		handler agent.ToolHandler
	}{
		{CheckAvailabilityTool, h.HandleCheckAvailability},
		{ScheduleAppointmentTool, h.HandleScheduleAppointment},
		{ModifyAppointmentTool, h.HandleModifyAppointment},
		{SendEmailTool, h.HandleSendEmail},
		{GetUserAppointmentsTool, h.HandleGetUserAppointments},
		{CancelAppointmentTool, h.HandleCancelAppointment},
		{RescheduleAppointmentTool, h.HandleRescheduleAppointment},
	}
	for _, b := range bindings {
		if err := reg.Register(b.tool, b.handler); err != nil {
			return err
		}
	}
	return nil
}

// HandleCheckAvailability processes the check_availability tool call
func (h *Handlers) HandleCheckAvailability(ctx context.Context, input map[string]any) (string, error) {
	args, err := requireArgs(input, "date")
	if err != nil {
		return "", err
	}
	return marshalResult(h.ops.CheckAvailability(ctx, args["date"]))
}

// HandleScheduleAppointment processes the schedule_appointment tool call
func (h *Handlers) HandleScheduleAppointment(ctx context.Context, input map[string]any) (string, error) {
	args, err := requireArgs(input, "date", "time", "purpose", "client_name", "client_email")
	if err != nil {
		return "", err
	}
	return marshalResult(h.ops.Schedule(ctx, appointment.ScheduleRequest{
		Date:        args["date"],
		Time:        args["time"],
		Purpose:     args["purpose"],
		ClientName:  args["client_name"],
		ClientEmail: args["client_email"],
	}))
}

// HandleModifyAppointment processes the modify_appointment tool call
func (h *Handlers) HandleModifyAppointment(ctx context.Context, input map[string]any) (string, error) {
	args, err := requireArgs(input, "appointment_id")
	if err != nil {
		return "", err
	}
	return marshalResult(h.ops.Modify(ctx, appointment.ModifyRequest{
		AppointmentID: args["appointment_id"],
		NewDate:       optionalArg(input, "new_date"),
		NewTime:       optionalArg(input, "new_time"),
	}))
}

// HandleSendEmail processes the send_email tool call
func (h *Handlers) HandleSendEmail(ctx context.Context, input map[string]any) (string, error) {
	args, err := requireArgs(input, "to", "subject", "body")
	if err != nil {
		return "", err
	}
	return marshalResult(h.ops.SendEmail(ctx, args["to"], args["subject"], args["body"]))
}

// HandleGetUserAppointments processes the get_user_appointments tool call
func (h *Handlers) HandleGetUserAppointments(ctx context.Context, input map[string]any) (string, error) {
	args, err := requireArgs(input, "client_email")
	if err != nil {
		return "", err
	}
	return marshalResult(h.ops.GetUserAppointments(ctx, args["client_email"]))
}

// HandleCancelAppointment processes the cancel_appointment tool call
func (h *Handlers) HandleCancelAppointment(ctx context.Context, input map[string]any) (string, error) {
	args, err := requireArgs(input, "client_email", "date", "time")
	if err != nil {
		return "", err
	}
	return marshalResult(h.ops.Cancel(ctx, appointment.CancelRequest{
		ClientEmail: args["client_email"],
		Date:        args["date"],
		Time:        args["time"],
	}))
}

// HandleRescheduleAppointment processes the reschedule_appointment tool call
func (h *Handlers) HandleRescheduleAppointment(ctx context.Context, input map[string]any) (string, error) {
	args, err := requireArgs(input, "client_email", "old_date", "old_time", "new_date", "new_time")
	if err != nil {
		return "", err
	}
	return marshalResult(h.ops.Reschedule(ctx, appointment.RescheduleRequest{
		ClientEmail: args["client_email"],
		OldDate:     args["old_date"],
		OldTime:     args["old_time"],
		NewDate:     args["new_date"],
		NewTime:     args["new_time"],
	}))
}

// requireArgs reads string arguments, failing on the first one that is missing or blank.
func requireArgs(input map[string]any, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		v := optionalArg(input, key)
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("%s is required", key)
		}
		out[key] = v
	}
	return out, nil
}

// optionalArg reads an argument as a string. Models occasionally send numbers for ids or times.
func optionalArg(input map[string]any, key string) string {
	switch v := input[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func marshalResult(result any) (string, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(data), nil
}
