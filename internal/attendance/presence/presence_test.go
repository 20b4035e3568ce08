package presence

import (
	"testing"
	"time"

	"presencia/backend/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// 2024-06-07 is a Friday.
func friday(clock string) time.Time {
	ts, err := time.Parse("2006-01-02 15:04", "2024-06-07 "+clock)
	if err != nil {
		panic(err)
	}
	return ts
}

func worker(id int, name string, venues []int, schedule []entity.WorkSchedule) entity.User {
	return entity.User{
		BasicEntity:       entity.BasicEntity{ID: id},
		FullName:          strPtr(name),
		Legajo:            strPtr("L-" + name[:1]),
		Schedule:          schedule,
		AssignedLocations: venues,
	}
}

func fridayShift() []entity.WorkSchedule {
	return []entity.WorkSchedule{{Day: "Friday", Start: "09:00", End: "17:00"}}
}

func record(userID int, action string, at time.Time) entity.LogEntry {
	return entity.LogEntry{UserID: userID, Type: action, Timestamp: at}
}

func TestBuildClassification(t *testing.T) {
	venues := []entity.Location{
		{BasicEntity: entity.BasicEntity{ID: 1}, Name: strPtr("Main Hall")},
	}
	workers := []entity.User{
		worker(1, "Ana", []int{1}, fridayShift()),
		worker(2, "Bruno", []int{1}, fridayShift()),
		worker(3, "Carla", []int{1}, []entity.WorkSchedule{{Day: "Monday", Start: "09:00", End: "17:00"}}),
	}
	records := []entity.LogEntry{
		record(1, entity.TypeCheckIn, friday("09:02")),
	}

	snap := Build(venues, workers, records, friday("12:00"))
	require.Len(t, snap.Venues, 1)

	board := snap.Venues[0]
	assert.Equal(t, "Main Hall", board.Name)
	assert.Equal(t, 1, board.PresentCount)
	assert.Equal(t, 2, board.ExpectedCount, "no-shift workers are not expected")
	require.Len(t, board.Workers, 3)

	byName := map[string]WorkerPresence{}
	for _, wp := range board.Workers {
		byName[wp.FullName] = wp
	}
	assert.Equal(t, StatusPresent, byName["Ana"].Status)
	assert.Equal(t, StatusAbsent, byName["Bruno"].Status)
	assert.Equal(t, StatusNoShift, byName["Carla"].Status)
	assert.Equal(t, "09:00 - 17:00", byName["Ana"].Shift)
	assert.Empty(t, byName["Carla"].Shift)
}

func TestBuildMostRecentRecordWins(t *testing.T) {
	venues := []entity.Location{{BasicEntity: entity.BasicEntity{ID: 1}}}
	workers := []entity.User{worker(1, "Ana", []int{1}, fridayShift())}

	records := []entity.LogEntry{
		record(1, entity.TypeCheckIn, friday("09:00")),
		record(1, entity.TypeCheckOut, friday("13:00")),
	}
	snap := Build(venues, workers, records, friday("14:00"))
	assert.Equal(t, StatusAbsent, snap.Venues[0].Workers[0].Status, "checked out")
	assert.Equal(t, entity.TypeCheckOut, snap.Venues[0].Workers[0].LastType)

	// Same records in the opposite slice order classify identically.
	reversed := []entity.LogEntry{records[1], records[0]}
	again := Build(venues, workers, reversed, friday("14:00"))
	assert.Equal(t, StatusAbsent, again.Venues[0].Workers[0].Status)
}

func TestBuildBlockedRecordDoesNotCountAsPresent(t *testing.T) {
	venues := []entity.Location{{BasicEntity: entity.BasicEntity{ID: 1}}}
	workers := []entity.User{worker(1, "Ana", []int{1}, fridayShift())}
	records := []entity.LogEntry{
		record(1, entity.TypeCheckIn, friday("09:00")),
		record(1, entity.TypeBlocked, friday("10:00")),
	}

	snap := Build(venues, workers, records, friday("11:00"))
	assert.Equal(t, StatusAbsent, snap.Venues[0].Workers[0].Status)
}

func TestBuildWorkerOnlyAppearsOnAssignedVenues(t *testing.T) {
	venues := []entity.Location{
		{BasicEntity: entity.BasicEntity{ID: 1}},
		{BasicEntity: entity.BasicEntity{ID: 2}},
	}
	workers := []entity.User{worker(1, "Ana", []int{2}, fridayShift())}

	snap := Build(venues, workers, nil, friday("10:00"))
	require.Len(t, snap.Venues, 2)
	assert.Empty(t, snap.Venues[0].Workers)
	require.Len(t, snap.Venues[1].Workers, 1)
}

func TestBuildIsIdempotent(t *testing.T) {
	venues := []entity.Location{{BasicEntity: entity.BasicEntity{ID: 1}, Name: strPtr("Main Hall")}}
	workers := []entity.User{
		worker(1, "Ana", []int{1}, fridayShift()),
		worker(2, "Bruno", []int{1}, fridayShift()),
	}
	records := []entity.LogEntry{record(1, entity.TypeCheckIn, friday("09:00"))}
	now := friday("12:00")

	first := Build(venues, workers, records, now)
	second := Build(venues, workers, records, now)
	assert.Equal(t, first, second)
}

func TestBuildEmptyInputs(t *testing.T) {
	snap := Build(nil, nil, nil, friday("12:00"))
	assert.Empty(t, snap.Venues)
	assert.Equal(t, friday("12:00"), snap.GeneratedAt)
}
