package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskOrderDeadlineReminder nudges users who have not ordered before the
	// same-day cutoff.
	TaskOrderDeadlineReminder = "orders:deadline_reminder"
	// TaskVendorSheet mails the kitchen the aggregated order counts for a date.
	TaskVendorSheet = "orders:vendor_sheet"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// DeadlineReminderPayload selects the date to remind for. An empty Date means
// the worker's current day.
type DeadlineReminderPayload struct {
	Date string `json:"date,omitempty"`
}

// NewDeadlineReminderTask constructs an Asynq task.
func NewDeadlineReminderTask(payload DeadlineReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderDeadlineReminder, data), nil
}

// VendorSheetPayload selects the date and the recipient of the order sheet.
type VendorSheetPayload struct {
	Date string `json:"date,omitempty"`
	To   string `json:"to"`
}

// NewVendorSheetTask constructs an Asynq task.
func NewVendorSheetTask(payload VendorSheetPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVendorSheet, data), nil
}
