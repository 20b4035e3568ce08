// Package schedule answers the two questions the clock-in flow asks about a
// worker's weekly schedule: is this instant inside any shift window, and how
// late is the worker relative to today's shift.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"presencia/backend/internal/entity"
)

const clockLayout = "15:04"

// IsWithin reports whether now falls inside any of the schedule entries.
// An empty schedule means no restriction is configured and always matches.
//
// Entries for today with Start <= End match when Start <= t <= End. An
// overnight entry for today (Start > End) matches once the shift has begun
// (t >= Start); the tail of the shift, after midnight, is matched through
// yesterday's entry instead (t <= End). Comparison on "HH:MM" strings is
// lexicographic, which is equivalent to comparing minutes.
func IsWithin(schedules []entity.WorkSchedule, now time.Time) bool {
	if len(schedules) == 0 {
		return true
	}

	t := now.Format(clockLayout)
	today := now.Weekday()
	yesterday := now.AddDate(0, 0, -1).Weekday()

	for _, s := range schedules {
		switch {
		case s.Matches(today):
			if !s.Overnight() {
				if s.Start <= t && t <= s.End {
					return true
				}
			} else if t >= s.Start {
				return true
			}
		case s.Matches(yesterday) && s.Overnight():
			if t <= s.End {
				return true
			}
		}
	}

	return false
}

// DelayInfo returns a lateness message when now is strictly after the start
// of today's shift, and nil when the worker is on time or has no shift today.
//
// Only today's weekday entry is inspected. A worker inside the post-midnight
// tail of yesterday's overnight shift gets no delay framing; IsWithin still
// judges them on schedule. That asymmetry is intentional, see DESIGN.md.
func DelayInfo(schedules []entity.WorkSchedule, now time.Time) *string {
	today := now.Weekday()

	for _, s := range schedules {
		if !s.Matches(today) {
			continue
		}

		t := now.Format(clockLayout)
		if t <= s.Start {
			return nil
		}

		delta := minutesOf(t) - minutesOf(s.Start)
		msg := fmt.Sprintf("your shift started at %s; you are %dh %02dm late", s.Start, delta/60, delta%60)
		return &msg
	}

	return nil
}

// minutesOf converts "HH:MM" to minutes since midnight. Malformed values
// count as zero, matching the permissive handling of stored schedules.
func minutesOf(clock string) int {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h*60 + m
}
