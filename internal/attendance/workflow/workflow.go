// Package workflow drives a single clock-in/clock-out attempt as an explicit
// state machine. The transition table is a pure function from (run, event) to
// run; every external effect (position, camera, AI validation, persistence)
// is performed by the Engine between transitions and fed back in as an event.
package workflow

import (
	"time"

	"presencia/backend/internal/attendance/geofence"
	"presencia/backend/internal/attendance/schedule"
	"presencia/backend/internal/auth"
	"presencia/backend/internal/entity"
	"presencia/backend/internal/service/vision"

	"github.com/pkg/errors"
)

type Phase string

const (
	PhaseDashboard          Phase = "DASHBOARD"
	PhaseOffScheduleWarning Phase = "OFF_SCHEDULE_WARNING"
	PhaseValidatingLocation Phase = "VALIDATING_LOCATION"
	PhaseCamera             Phase = "CAMERA"
	PhaseProcessing         Phase = "PROCESSING"
	PhaseResult             Phase = "RESULT"
	PhaseSuccess            Phase = "SUCCESS"
	PhasePermissionDenied   Phase = "PERMISSION_DENIED"
)

// ObservationDelay is how long the confirmation screen stays up after a
// successful save before the client signs the worker out.
const ObservationDelay = 5 * time.Second

// ExtraStaffNote is attached to records whose biometric validation was
// bypassed because of the worker's role.
const ExtraStaffNote = "identity and dress code validation skipped for extra staff"

// Run is the full state of one attendance attempt. It owns the draft record
// until the attempt either persists it or is abandoned.
type Run struct {
	ID        string          `json:"id"`
	Worker    entity.User     `json:"worker"`
	Action    string          `json:"action"`
	StartedAt time.Time       `json:"started_at"`
	Phase     Phase           `json:"phase"`
	Draft     entity.LogEntry `json:"draft"`
	Photo     []byte          `json:"photo,omitempty"`
}

// Event is one input to the state machine.
type Event interface{ isEvent() }

// EventStart begins an attempt for the given action. The draft record's
// timestamp is fixed here: validation time must not inflate the recorded
// clock-in time.
type EventStart struct {
	RunID  string
	Worker entity.User
	Action string
	Now    time.Time
}

// EventConfirmOffSchedule is the worker explicitly proceeding despite being
// outside their schedule.
type EventConfirmOffSchedule struct{}

// EventCancel abandons the attempt. No record is ever written.
type EventCancel struct{}

// EventPositionResolved delivers the device position plus the venue list to
// match it against.
type EventPositionResolved struct {
	Latitude  float64
	Longitude float64
	Venues    []entity.Location
	Now       time.Time
}

// EventPositionFailed reports a sensor failure. Denied permission is
// recoverable via an explicit retry; anything else abandons the attempt.
type EventPositionFailed struct {
	PermissionDenied bool
}

// EventRetryPosition re-attempts the position request for the same pending
// action after a permission denial.
type EventRetryPosition struct{}

// EventPhotoCaptured delivers a single frame from the live camera feed.
type EventPhotoCaptured struct {
	Photo []byte
}

// EventValidationCompleted delivers the AI validator's verdict.
type EventValidationCompleted struct {
	Verdict vision.Verdict
}

// EventValidationFailed reports a validator failure: fatal for the attempt.
type EventValidationFailed struct{}

// EventRetryPhoto discards the captured photo and re-enters the camera,
// keeping the already-computed location and schedule fields.
type EventRetryPhoto struct{}

// EventFinalize persists the record; only admissible when identity passed or
// was skipped.
type EventFinalize struct{}

// EventSaveWithIncident persists the record despite a flagged identity
// discrepancy, by explicit acknowledgment.
type EventSaveWithIncident struct{}

func (EventStart) isEvent()               {}
func (EventConfirmOffSchedule) isEvent()  {}
func (EventCancel) isEvent()              {}
func (EventPositionResolved) isEvent()    {}
func (EventPositionFailed) isEvent()      {}
func (EventRetryPosition) isEvent()       {}
func (EventPhotoCaptured) isEvent()       {}
func (EventValidationCompleted) isEvent() {}
func (EventValidationFailed) isEvent()    {}
func (EventRetryPhoto) isEvent()          {}
func (EventFinalize) isEvent()            {}
func (EventSaveWithIncident) isEvent()    {}

var ErrInvalidTransition = errors.New("invalid transition")

func invalid(run Run, ev Event) (Run, error) {
	return run, errors.Wrapf(ErrInvalidTransition, "phase %s does not accept %T", run.Phase, ev)
}

// CanFinalize reports whether a plain save is admissible.
func (r Run) CanFinalize() bool {
	return r.Phase == PhaseResult &&
		(r.Draft.IdentityStatus == entity.IdentityMatch || r.Draft.IdentityStatus == entity.IdentitySkipped)
}

// CanSaveWithIncident reports whether an incident-acknowledged save is
// admissible.
func (r Run) CanSaveWithIncident() bool {
	return r.Phase == PhaseResult && r.Draft.IdentityFlagged()
}

// CanRetryPhoto reports whether a new photo may be captured.
func (r Run) CanRetryPhoto() bool {
	return r.Phase == PhaseResult &&
		r.Draft.IdentityStatus != entity.IdentityMatch && r.Draft.IdentityStatus != entity.IdentitySkipped
}

// Terminal reports whether the run is finished.
func (r Run) Terminal() bool {
	return r.Phase == PhaseSuccess || r.Phase == PhaseDashboard
}

// Transition applies one event to the run. It never performs IO.
func Transition(run Run, ev Event) (Run, error) {
	switch ev := ev.(type) {
	case EventStart:
		if run.Phase != "" && run.Phase != PhaseDashboard {
			return invalid(run, ev)
		}
		return start(ev), nil

	case EventConfirmOffSchedule:
		if run.Phase != PhaseOffScheduleWarning {
			return invalid(run, ev)
		}
		run.Phase = PhaseValidatingLocation
		return run, nil

	case EventCancel:
		if run.Phase == PhaseSuccess {
			return invalid(run, ev)
		}
		run.Phase = PhaseDashboard
		return run, nil

	case EventPositionResolved:
		if run.Phase != PhaseValidatingLocation {
			return invalid(run, ev)
		}
		return resolvePosition(run, ev), nil

	case EventPositionFailed:
		if run.Phase != PhaseValidatingLocation {
			return invalid(run, ev)
		}
		if ev.PermissionDenied {
			run.Phase = PhasePermissionDenied
		} else {
			run.Phase = PhaseDashboard
		}
		return run, nil

	case EventRetryPosition:
		if run.Phase != PhasePermissionDenied {
			return invalid(run, ev)
		}
		run.Phase = PhaseValidatingLocation
		return run, nil

	case EventPhotoCaptured:
		if run.Phase != PhaseCamera {
			return invalid(run, ev)
		}
		run.Photo = ev.Photo
		run.Phase = PhaseProcessing
		return run, nil

	case EventValidationCompleted:
		if run.Phase != PhaseProcessing {
			return invalid(run, ev)
		}
		return applyVerdict(run, ev.Verdict), nil

	case EventValidationFailed:
		if run.Phase != PhaseProcessing {
			return invalid(run, ev)
		}
		run.Phase = PhaseDashboard
		return run, nil

	case EventRetryPhoto:
		if !run.CanRetryPhoto() {
			return invalid(run, ev)
		}
		run.Photo = nil
		run.Draft.IdentityStatus = ""
		run.Draft.DressCodeStatus = ""
		run.Draft.AIFeedback = ""
		run.Phase = PhaseCamera
		return run, nil

	case EventFinalize:
		if !run.CanFinalize() {
			return invalid(run, ev)
		}
		run.Phase = PhaseSuccess
		return run, nil

	case EventSaveWithIncident:
		if !run.CanSaveWithIncident() {
			return invalid(run, ev)
		}
		run.Phase = PhaseSuccess
		return run, nil
	}

	return invalid(run, ev)
}

func start(ev EventStart) Run {
	run := Run{
		ID:        ev.RunID,
		Worker:    ev.Worker,
		Action:    ev.Action,
		StartedAt: ev.Now,
	}

	var name, legajo string
	if ev.Worker.FullName != nil {
		name = *ev.Worker.FullName
	}
	if ev.Worker.Legajo != nil {
		legajo = *ev.Worker.Legajo
	}

	run.Draft = entity.LogEntry{
		UserID:    ev.Worker.ID,
		UserName:  name,
		Legajo:    legajo,
		Timestamp: ev.Now,
		Type:      ev.Action,
	}

	if schedule.IsWithin(ev.Worker.Schedule, ev.Now) {
		run.Draft.ScheduleStatus = entity.ScheduleOnTime
		run.Phase = PhaseValidatingLocation
	} else {
		run.Draft.ScheduleStatus = entity.ScheduleOffSchedule
		run.Phase = PhaseOffScheduleWarning
	}

	return run
}

func resolvePosition(run Run, ev EventPositionResolved) Run {
	// The schedule is re-evaluated here: the sensor may have taken a while
	// and the warning may have been confirmed some time ago.
	if schedule.IsWithin(run.Worker.Schedule, ev.Now) {
		run.Draft.ScheduleStatus = entity.ScheduleOnTime
	} else {
		run.Draft.ScheduleStatus = entity.ScheduleOffSchedule
	}

	nearest, distance, ok := geofence.Nearest(ev.Latitude, ev.Longitude, ev.Venues)
	if !ok {
		run.Draft.LocationStatus = entity.LocationInvalid
	} else {
		id := nearest.ID
		run.Draft.LocationID = &id
		if nearest.Name != nil {
			run.Draft.LocationName = *nearest.Name
		}
		if geofence.Inside(distance, nearest) {
			run.Draft.LocationStatus = entity.LocationValid
		} else {
			run.Draft.LocationStatus = entity.LocationInvalid
		}
	}

	if role := run.Worker.Role; role != nil && *role == auth.RoleExtraWaiter {
		// Biometric validation is bypassed entirely for extra staff.
		run.Draft.DressCodeStatus = entity.DressCodeSkipped
		run.Draft.IdentityStatus = entity.IdentitySkipped
		run.Draft.PhotoEvidence = ""
		run.Draft.AIFeedback = ExtraStaffNote
		run.Photo = nil
		run.Phase = PhaseResult
		return run
	}

	run.Phase = PhaseCamera
	return run
}

func applyVerdict(run Run, verdict vision.Verdict) Run {
	hasReference := run.Worker.ReferenceImage != nil && *run.Worker.ReferenceImage != ""

	switch {
	case !hasReference:
		run.Draft.IdentityStatus = entity.IdentityNoRef
	case verdict.IdentityMatch:
		run.Draft.IdentityStatus = entity.IdentityMatch
	default:
		run.Draft.IdentityStatus = entity.IdentityNoMatch
	}

	if verdict.DressCodeMatches {
		run.Draft.DressCodeStatus = entity.DressCodePass
	} else {
		run.Draft.DressCodeStatus = entity.DressCodeFail
	}

	run.Draft.AIFeedback = verdict.Description
	run.Phase = PhaseResult
	return run
}
