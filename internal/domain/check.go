package domain

import "time"

// CheckConfig identifies a named rule with its platform credential and
// notification text. Looked up by name; absence (or a missing credential)
// is a configuration fault, not an item fault.
type CheckConfig struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	APIKey       string    `json:"-"`
	ReportPath   string    `json:"report_path,omitempty"`
	EmailSubject string    `json:"email_subject"`
	EmailBody    string    `json:"email_body,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// User is a notification recipient.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Subscription ties a user to a check's notifications.
type Subscription struct {
	UserID  int64 `json:"user_id"`
	CheckID int64 `json:"check_id"`
}

// StagedItem marks a barcode as pending re-verification for a check.
// The (CheckName, Barcode) pair is the natural key; re-staging the same
// barcode overwrites rather than duplicates.
type StagedItem struct {
	CheckName string    `json:"check_name"`
	Barcode   string    `json:"barcode"`
	StagedAt  time.Time `json:"staged_at"`
}

// NotificationRequest is the fully-formed payload handed to the notifier
// gateway. Bodies above the inline limit are written to blob storage and
// referenced by BodyRef instead of inlined.
type NotificationRequest struct {
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	HTMLBody   string   `json:"html_body,omitempty"`
	BodyRef    string   `json:"body_ref,omitempty"`
}
