package entity

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// WorkSchedule is one weekly recurring shift window. Start > End encodes an
// overnight shift that wraps past midnight.
type WorkSchedule struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Matches reports whether the entry is for the given weekday.
func (s WorkSchedule) Matches(day time.Weekday) bool {
	return strings.EqualFold(s.Day, day.String())
}

// Overnight reports whether the shift crosses midnight.
func (s WorkSchedule) Overnight() bool {
	return s.Start > s.End
}

type User struct {
	bun.BaseModel `bun:"table:users"`

	BasicEntity
	Legajo            *string        `json:"legajo"     bun:"legajo"`
	Dni               *string        `json:"dni"        bun:"dni"`
	FullName          *string        `json:"full_name"  bun:"full_name"`
	Password          *string        `json:"-"          bun:"password"`
	Role              *string        `json:"role"       bun:"role"`
	DressCode         *string        `json:"dress_code" bun:"dress_code"`
	ReferenceImage    *string        `json:"reference_image" bun:"reference_image"`
	Schedule          []WorkSchedule `json:"schedule"   bun:"schedule,type:jsonb"`
	AssignedLocations []int          `json:"assigned_locations" bun:"assigned_locations,type:jsonb"`
}

// AssignedTo reports whether the worker is assigned to the location.
func (u User) AssignedTo(locationID int) bool {
	for _, id := range u.AssignedLocations {
		if id == locationID {
			return true
		}
	}
	return false
}
