// Package model defines shared data structures for the candidate bot.
package model

import "time"

// SheetRow is one raw row read from the spreadsheet, before validation.
// RowNumber is the 1-based spreadsheet row (data starts at row 2), so the
// derived candidate ID is stable across polls.
type SheetRow struct {
	SheetName string
	RowNumber int
	Name      string
	Object    string
	Recruiter string
	DateText  string
}

// Candidate mirrors a row of the candidates table.
type Candidate struct {
	ID             string // "<sheet name>_<row number>", stable across polls
	Name           string
	Object         string
	StartDate      time.Time // date precision, time part zero
	RecruiterLabel string    // as written in the sheet; may be empty
	ReminderSent   bool
	ReminderSentAt *time.Time
	CreatedAt      time.Time
}

// Registration binds a recruiter label to a Telegram chat.
// At most one live registration exists per label (last write wins).
type Registration struct {
	ChatID         string
	RecruiterLabel string
	RegisteredAt   time.Time
}
