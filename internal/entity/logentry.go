package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Attendance record type.
const (
	TypeCheckIn  = "CHECK_IN"
	TypeCheckOut = "CHECK_OUT"
	TypeBlocked  = "BLOCKED"
)

// Location validation outcome.
const (
	LocationValid   = "VALID"
	LocationInvalid = "INVALID"
	LocationSkipped = "SKIPPED"
)

// Schedule validation outcome.
const (
	ScheduleOnTime      = "ON_TIME"
	ScheduleOffSchedule = "OFF_SCHEDULE"
)

// Dress-code validation outcome.
const (
	DressCodePass    = "PASS"
	DressCodeFail    = "FAIL"
	DressCodeSkipped = "SKIPPED"
)

// Identity validation outcome.
const (
	IdentityMatch   = "MATCH"
	IdentityNoMatch = "NO_MATCH"
	IdentityNoRef   = "NO_REF"
	IdentitySkipped = "SKIPPED"
)

// LogEntry is one finished attendance attempt. It is written exactly once
// when a clock-in/out run completes and never updated afterwards.
type LogEntry struct {
	bun.BaseModel `bun:"table:log_entries"`

	ID              int       `json:"id" bun:"id,pk,autoincrement"`
	UserID          int       `json:"user_id"   bun:"user_id"`
	UserName        string    `json:"user_name" bun:"user_name"`
	Legajo          string    `json:"legajo"    bun:"legajo"`
	Timestamp       time.Time `json:"timestamp" bun:"ts"`
	Type            string    `json:"type"      bun:"type"`
	LocationID      *int      `json:"location_id"   bun:"location_id"`
	LocationName    string    `json:"location_name" bun:"location_name"`
	LocationStatus  string    `json:"location_status" bun:"location_status"`
	ScheduleStatus  string    `json:"schedule_status" bun:"schedule_status"`
	DressCodeStatus string    `json:"dress_code_status" bun:"dress_code_status"`
	IdentityStatus  string    `json:"identity_status" bun:"identity_status"`
	PhotoEvidence   string    `json:"photo_evidence" bun:"photo_evidence"`
	AIFeedback      string    `json:"ai_feedback" bun:"ai_feedback"`
	CreatedAt       time.Time `json:"-" bun:"created_at"`
}

// IdentityFlagged reports whether the record was saved with an unresolved
// identity discrepancy (an incident-acknowledged save).
func (l LogEntry) IdentityFlagged() bool {
	return l.IdentityStatus == IdentityNoMatch || l.IdentityStatus == IdentityNoRef
}
