package workflow

import (
	"testing"
	"time"

	"presencia/backend/internal/auth"
	"presencia/backend/internal/entity"
	"presencia/backend/internal/service/vision"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// fridayAt returns a clock on Friday 2024-06-07.
func fridayAt(clock string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2024-06-07 "+clock)
	if err != nil {
		panic(err)
	}
	return t
}

func waiter() entity.User {
	return entity.User{
		BasicEntity:    entity.BasicEntity{ID: 7},
		Legajo:         strPtr("L-0007"),
		FullName:       strPtr("Ana Suarez"),
		Role:           strPtr(auth.RoleWaiter),
		DressCode:      strPtr("black shirt, black pants"),
		ReferenceImage: strPtr("statics/reference/ana.jpg"),
		Schedule: []entity.WorkSchedule{
			{Day: "Friday", Start: "09:00", End: "17:00"},
		},
		AssignedLocations: []int{1},
	}
}

func extraWaiter() entity.User {
	w := waiter()
	w.Role = strPtr(auth.RoleExtraWaiter)
	w.ReferenceImage = nil
	return w
}

func venueAtOrigin() entity.Location {
	return entity.Location{
		BasicEntity: entity.BasicEntity{ID: 1},
		Name:        strPtr("Main Hall"),
		Latitude:    0,
		Longitude:   0,
		Radius:      50,
	}
}

func startRun(t *testing.T, worker entity.User, action string, now time.Time) Run {
	t.Helper()
	run, err := Transition(Run{}, EventStart{RunID: "run-1", Worker: worker, Action: action, Now: now})
	require.NoError(t, err)
	return run
}

func TestStartOnScheduleGoesToLocationValidation(t *testing.T) {
	now := fridayAt("10:00")
	run := startRun(t, waiter(), entity.TypeCheckIn, now)

	assert.Equal(t, PhaseValidatingLocation, run.Phase)
	assert.Equal(t, entity.TypeCheckIn, run.Action)
	assert.Equal(t, entity.ScheduleOnTime, run.Draft.ScheduleStatus)
	assert.Equal(t, 7, run.Draft.UserID)
	assert.Equal(t, "Ana Suarez", run.Draft.UserName)
	assert.Equal(t, "L-0007", run.Draft.Legajo)
	assert.Equal(t, now, run.Draft.Timestamp)
}

func TestStartOffScheduleWarns(t *testing.T) {
	run := startRun(t, waiter(), entity.TypeCheckIn, fridayAt("07:00"))

	assert.Equal(t, PhaseOffScheduleWarning, run.Phase)
	assert.Equal(t, entity.ScheduleOffSchedule, run.Draft.ScheduleStatus)
}

func TestOffScheduleWarningConfirmAndCancel(t *testing.T) {
	run := startRun(t, waiter(), entity.TypeCheckOut, fridayAt("07:00"))

	confirmed, err := Transition(run, EventConfirmOffSchedule{})
	require.NoError(t, err)
	assert.Equal(t, PhaseValidatingLocation, confirmed.Phase)
	assert.Equal(t, entity.TypeCheckOut, confirmed.Action, "the pending action is preserved")

	cancelled, err := Transition(run, EventCancel{})
	require.NoError(t, err)
	assert.Equal(t, PhaseDashboard, cancelled.Phase)
}

func TestPositionInsideRadiusGoesToCamera(t *testing.T) {
	run := startRun(t, waiter(), entity.TypeCheckIn, fridayAt("10:00"))

	run, err := Transition(run, EventPositionResolved{
		Latitude: 0.0001, Longitude: 0, // ~11 m from the venue
		Venues: []entity.Location{venueAtOrigin()},
		Now:    fridayAt("10:01"),
	})
	require.NoError(t, err)

	assert.Equal(t, PhaseCamera, run.Phase)
	assert.Equal(t, entity.LocationValid, run.Draft.LocationStatus)
	require.NotNil(t, run.Draft.LocationID)
	assert.Equal(t, 1, *run.Draft.LocationID)
	assert.Equal(t, "Main Hall", run.Draft.LocationName)
	assert.Equal(t, fridayAt("10:00"), run.Draft.Timestamp, "timestamp stays fixed at the moment the action was requested")
}

func TestPositionOutsideRadiusStillProceeds(t *testing.T) {
	run := startRun(t, waiter(), entity.TypeCheckIn, fridayAt("10:00"))

	run, err := Transition(run, EventPositionResolved{
		Latitude: 0.01, Longitude: 0, // ~1.1 km away
		Venues: []entity.Location{venueAtOrigin()},
		Now:    fridayAt("10:01"),
	})
	require.NoError(t, err)

	assert.Equal(t, PhaseCamera, run.Phase)
	assert.Equal(t, entity.LocationInvalid, run.Draft.LocationStatus)
}

func TestPositionReevaluatesSchedule(t *testing.T) {
	// Started just inside the shift; by the time the sensor answered the
	// shift was over.
	run := startRun(t, waiter(), entity.TypeCheckOut, fridayAt("16:59"))
	require.Equal(t, entity.ScheduleOnTime, run.Draft.ScheduleStatus)

	run, err := Transition(run, EventPositionResolved{
		Latitude: 0, Longitude: 0,
		Venues: []entity.Location{venueAtOrigin()},
		Now:    fridayAt("17:30"),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ScheduleOffSchedule, run.Draft.ScheduleStatus)
}

func TestExtraWaiterBypassesBiometrics(t *testing.T) {
	run := startRun(t, extraWaiter(), entity.TypeCheckIn, fridayAt("10:00"))

	run, err := Transition(run, EventPositionResolved{
		Latitude: 0, Longitude: 0,
		Venues: []entity.Location{venueAtOrigin()},
		Now:    fridayAt("10:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, PhaseResult, run.Phase)
	assert.Equal(t, entity.DressCodeSkipped, run.Draft.DressCodeStatus)
	assert.Equal(t, entity.IdentitySkipped, run.Draft.IdentityStatus)
	assert.Empty(t, run.Draft.PhotoEvidence)
	assert.Equal(t, ExtraStaffNote, run.Draft.AIFeedback)
	assert.True(t, run.CanFinalize())
	assert.False(t, run.CanRetryPhoto())
}

func TestPositionPermissionDeniedIsRecoverable(t *testing.T) {
	run := startRun(t, waiter(), entity.TypeCheckOut, fridayAt("10:00"))

	run, err := Transition(run, EventPositionFailed{PermissionDenied: true})
	require.NoError(t, err)
	assert.Equal(t, PhasePermissionDenied, run.Phase)

	run, err = Transition(run, EventRetryPosition{})
	require.NoError(t, err)
	assert.Equal(t, PhaseValidatingLocation, run.Phase)
	assert.Equal(t, entity.TypeCheckOut, run.Action, "retry keeps the original pending action")
}

func TestPositionGenericFailureAbandons(t *testing.T) {
	run := startRun(t, waiter(), entity.TypeCheckIn, fridayAt("10:00"))

	run, err := Transition(run, EventPositionFailed{PermissionDenied: false})
	require.NoError(t, err)
	assert.Equal(t, PhaseDashboard, run.Phase)
}

func toCamera(t *testing.T, worker entity.User, action string, now time.Time) Run {
	t.Helper()
	run := startRun(t, worker, action, now)
	if run.Phase == PhaseOffScheduleWarning {
		var err error
		run, err = Transition(run, EventConfirmOffSchedule{})
		require.NoError(t, err)
	}
	run, err := Transition(run, EventPositionResolved{
		Latitude: 0, Longitude: 0,
		Venues: []entity.Location{venueAtOrigin()},
		Now:    now,
	})
	require.NoError(t, err)
	require.Equal(t, PhaseCamera, run.Phase)
	return run
}

func TestVerdictMapping(t *testing.T) {
	tests := []struct {
		name         string
		worker       entity.User
		verdict      vision.Verdict
		wantIdentity string
		wantDress    string
	}{
		{
			name:         "match and pass",
			worker:       waiter(),
			verdict:      vision.Verdict{IdentityMatch: true, DressCodeMatches: true, Description: "ok"},
			wantIdentity: entity.IdentityMatch,
			wantDress:    entity.DressCodePass,
		},
		{
			name:         "no match",
			worker:       waiter(),
			verdict:      vision.Verdict{IdentityMatch: false, DressCodeMatches: true},
			wantIdentity: entity.IdentityNoMatch,
			wantDress:    entity.DressCodePass,
		},
		{
			name: "no reference photo",
			worker: func() entity.User {
				w := waiter()
				w.ReferenceImage = nil
				return w
			}(),
			verdict:      vision.Verdict{IdentityMatch: true, DressCodeMatches: false},
			wantIdentity: entity.IdentityNoRef,
			wantDress:    entity.DressCodeFail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := toCamera(t, tt.worker, entity.TypeCheckIn, fridayAt("10:00"))

			run, err := Transition(run, EventPhotoCaptured{Photo: []byte("frame")})
			require.NoError(t, err)
			require.Equal(t, PhaseProcessing, run.Phase)

			run, err = Transition(run, EventValidationCompleted{Verdict: tt.verdict})
			require.NoError(t, err)

			assert.Equal(t, PhaseResult, run.Phase)
			assert.Equal(t, tt.wantIdentity, run.Draft.IdentityStatus)
			assert.Equal(t, tt.wantDress, run.Draft.DressCodeStatus)
			assert.Equal(t, tt.verdict.Description, run.Draft.AIFeedback)
		})
	}
}

func TestValidationFailureAbandons(t *testing.T) {
	run := toCamera(t, waiter(), entity.TypeCheckIn, fridayAt("10:00"))

	run, err := Transition(run, EventPhotoCaptured{Photo: []byte("frame")})
	require.NoError(t, err)

	run, err = Transition(run, EventValidationFailed{})
	require.NoError(t, err)
	assert.Equal(t, PhaseDashboard, run.Phase)
}

func TestResultGates(t *testing.T) {
	run := toCamera(t, waiter(), entity.TypeCheckIn, fridayAt("10:00"))
	run, err := Transition(run, EventPhotoCaptured{Photo: []byte("frame")})
	require.NoError(t, err)
	run, err = Transition(run, EventValidationCompleted{Verdict: vision.Verdict{IdentityMatch: false}})
	require.NoError(t, err)

	assert.False(t, run.CanFinalize())
	assert.True(t, run.CanSaveWithIncident())
	assert.True(t, run.CanRetryPhoto())

	_, err = Transition(run, EventFinalize{})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	saved, err := Transition(run, EventSaveWithIncident{})
	require.NoError(t, err)
	assert.Equal(t, PhaseSuccess, saved.Phase)
}

func TestRetryPhotoKeepsLocationAndSchedule(t *testing.T) {
	run := toCamera(t, waiter(), entity.TypeCheckIn, fridayAt("10:00"))
	run, err := Transition(run, EventPhotoCaptured{Photo: []byte("frame")})
	require.NoError(t, err)
	run, err = Transition(run, EventValidationCompleted{Verdict: vision.Verdict{IdentityMatch: false}})
	require.NoError(t, err)

	retried, err := Transition(run, EventRetryPhoto{})
	require.NoError(t, err)

	assert.Equal(t, PhaseCamera, retried.Phase)
	assert.Nil(t, retried.Photo)
	assert.Empty(t, retried.Draft.IdentityStatus)
	assert.Empty(t, retried.Draft.DressCodeStatus)
	assert.Equal(t, run.Draft.LocationStatus, retried.Draft.LocationStatus)
	assert.Equal(t, run.Draft.ScheduleStatus, retried.Draft.ScheduleStatus)
}

func TestInvalidTransitionsAreRejected(t *testing.T) {
	run := startRun(t, waiter(), entity.TypeCheckIn, fridayAt("10:00"))

	invalidEvents := []Event{
		EventPhotoCaptured{Photo: []byte("x")}, // no camera yet
		EventConfirmOffSchedule{},              // no warning shown
		EventFinalize{},                        // nothing to save
		EventRetryPosition{},                   // no permission denial
	}
	for _, ev := range invalidEvents {
		_, err := Transition(run, ev)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}

	success := Run{Phase: PhaseSuccess}
	_, err := Transition(success, EventCancel{})
	assert.ErrorIs(t, err, ErrInvalidTransition, "success is terminal")
}
