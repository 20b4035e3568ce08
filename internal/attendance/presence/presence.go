package presence

import (
	"time"

	"presencia/backend/internal/entity"
)

// Worker classification for the live venue board.
const (
	StatusNoShift = "NO_SHIFT"
	StatusPresent = "PRESENT"
	StatusAbsent  = "ABSENT"
)

type WorkerPresence struct {
	UserID   int     `json:"userId"`
	FullName string  `json:"fullName"`
	Legajo   string  `json:"legajo"`
	Status   string  `json:"status"`
	Shift    string  `json:"shift,omitempty"`
	LastType string  `json:"lastType,omitempty"`
	LastSeen *string `json:"lastSeen,omitempty"`
}

type VenueBoard struct {
	LocationID    int              `json:"locationId"`
	Name          string           `json:"name"`
	PresentCount  int              `json:"presentCount"`
	ExpectedCount int              `json:"expectedCount"`
	Workers       []WorkerPresence `json:"workers"`
}

type Snapshot struct {
	GeneratedAt time.Time    `json:"generatedAt"`
	Venues      []VenueBoard `json:"venues"`
}

// Build produces the venue boards for a given instant. It is a pure function
// of its inputs: re-running it with the same venues, workers and records
// yields the same snapshot.
func Build(venues []entity.Location, workers []entity.User, todayRecords []entity.LogEntry, now time.Time) Snapshot {
	latest := latestByWorker(todayRecords)
	weekday := now.Weekday()

	snap := Snapshot{GeneratedAt: now, Venues: make([]VenueBoard, 0, len(venues))}
	for _, venue := range venues {
		board := VenueBoard{LocationID: venue.ID, Workers: []WorkerPresence{}}
		if venue.Name != nil {
			board.Name = *venue.Name
		}

		for _, worker := range workers {
			if !worker.AssignedTo(venue.ID) {
				continue
			}
			wp := classify(worker, latest[worker.ID], weekday)
			switch wp.Status {
			case StatusPresent:
				board.PresentCount++
				board.ExpectedCount++
			case StatusAbsent:
				board.ExpectedCount++
			}
			board.Workers = append(board.Workers, wp)
		}

		snap.Venues = append(snap.Venues, board)
	}
	return snap
}

func classify(worker entity.User, last *entity.LogEntry, weekday time.Weekday) WorkerPresence {
	wp := WorkerPresence{UserID: worker.ID, Status: StatusNoShift}
	if worker.FullName != nil {
		wp.FullName = *worker.FullName
	}
	if worker.Legajo != nil {
		wp.Legajo = *worker.Legajo
	}

	var shift *entity.WorkSchedule
	for i := range worker.Schedule {
		if worker.Schedule[i].Matches(weekday) {
			shift = &worker.Schedule[i]
			break
		}
	}
	if shift == nil {
		return wp
	}
	wp.Shift = shift.Start + " - " + shift.End

	wp.Status = StatusAbsent
	if last != nil {
		wp.LastType = last.Type
		seen := last.Timestamp.Format(time.RFC3339)
		wp.LastSeen = &seen
		if last.Type == entity.TypeCheckIn {
			wp.Status = StatusPresent
		}
	}
	return wp
}

// latestByWorker keeps, per worker, the record with the greatest timestamp.
func latestByWorker(records []entity.LogEntry) map[int]*entity.LogEntry {
	latest := make(map[int]*entity.LogEntry, len(records))
	for i := range records {
		r := &records[i]
		if cur, ok := latest[r.UserID]; !ok || r.Timestamp.After(cur.Timestamp) {
			latest[r.UserID] = r
		}
	}
	return latest
}
