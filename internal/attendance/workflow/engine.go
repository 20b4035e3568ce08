package workflow

import (
	"context"
	"log"
	"time"

	"presencia/backend/internal/entity"
	"presencia/backend/internal/service/upload"
	"presencia/backend/internal/service/vision"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNoActiveRun is returned when a worker has no attempt in progress.
var ErrNoActiveRun = errors.New("no active attempt")

// ErrStaleRun is returned when an event carries the id of an attempt that is
// no longer the worker's current one. Results of abandoned attempts must
// never be applied to a newer one.
var ErrStaleRun = errors.New("attempt is no longer active")

// RecordStore persists finished attendance records.
type RecordStore interface {
	Insert(ctx context.Context, entry *entity.LogEntry) error
}

// VenueSource lists the venues a position can be matched against.
type VenueSource interface {
	Active(ctx context.Context) ([]entity.Location, error)
}

// Validator is the external AI photo check.
type Validator interface {
	Validate(ctx context.Context, req vision.Request) (vision.Verdict, error)
}

// Uploader stores photo evidence and returns a resolvable reference.
type Uploader interface {
	UploadPhoto(ctx context.Context, runID string, photo []byte) upload.Result
}

// MediaLoader reads a stored image back by its reference.
type MediaLoader interface {
	LoadImage(ctx context.Context, ref string) ([]byte, error)
}

// Sessions holds the single in-progress run per worker.
type Sessions interface {
	Load(ctx context.Context, workerID int) (Run, error)
	Save(ctx context.Context, run Run) error
	Delete(ctx context.Context, workerID int) error
}

// Engine executes the external effects around the pure transition table. At
// most one external call per run is in flight at a time; every method loads
// the worker's current run, applies exactly one logical step and stores or
// clears the result.
type Engine struct {
	sessions  Sessions
	venues    VenueSource
	records   RecordStore
	validator Validator
	uploader  Uploader
	media     MediaLoader

	now   func() time.Time
	newID func() string
}

func NewEngine(sessions Sessions, venues VenueSource, records RecordStore, validator Validator, uploader Uploader, media MediaLoader) *Engine {
	return &Engine{
		sessions:  sessions,
		venues:    venues,
		records:   records,
		validator: validator,
		uploader:  uploader,
		media:     media,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Start begins a new attempt for the worker. Any previous unfinished attempt
// is superseded: its id stops matching and late results for it are dropped.
func (e *Engine) Start(ctx context.Context, worker entity.User, action string) (Run, error) {
	run, err := Transition(Run{}, EventStart{
		RunID:  e.newID(),
		Worker: worker,
		Action: action,
		Now:    e.now(),
	})
	if err != nil {
		return Run{}, err
	}

	if err := e.sessions.Save(ctx, run); err != nil {
		return Run{}, errors.Wrap(err, "saving attempt session")
	}

	return run, nil
}

func (e *Engine) current(ctx context.Context, workerID int, runID string) (Run, error) {
	run, err := e.sessions.Load(ctx, workerID)
	if err != nil {
		return Run{}, err
	}
	if run.ID != runID {
		return Run{}, ErrStaleRun
	}
	return run, nil
}

func (e *Engine) step(ctx context.Context, workerID int, runID string, ev Event) (Run, error) {
	run, err := e.current(ctx, workerID, runID)
	if err != nil {
		return Run{}, err
	}

	run, err = Transition(run, ev)
	if err != nil {
		return Run{}, err
	}

	if run.Phase == PhaseDashboard {
		// The attempt is over with nothing written; drop the session.
		if err := e.sessions.Delete(ctx, workerID); err != nil {
			log.Println("deleting attempt session:", err)
		}
		return run, nil
	}

	if err := e.sessions.Save(ctx, run); err != nil {
		return Run{}, errors.Wrap(err, "saving attempt session")
	}
	return run, nil
}

// ConfirmOffSchedule proceeds with the pending action despite the warning.
func (e *Engine) ConfirmOffSchedule(ctx context.Context, workerID int, runID string) (Run, error) {
	return e.step(ctx, workerID, runID, EventConfirmOffSchedule{})
}

// Cancel abandons the attempt from any non-terminal state.
func (e *Engine) Cancel(ctx context.Context, workerID int, runID string) (Run, error) {
	return e.step(ctx, workerID, runID, EventCancel{})
}

// ReportPosition feeds a successful sensor reading into the run.
func (e *Engine) ReportPosition(ctx context.Context, workerID int, runID string, lat, lng float64) (Run, error) {
	run, err := e.current(ctx, workerID, runID)
	if err != nil {
		return Run{}, err
	}

	venues, err := e.venues.Active(ctx)
	if err != nil {
		return run, errors.Wrap(err, "loading venues")
	}

	run, err = Transition(run, EventPositionResolved{
		Latitude:  lat,
		Longitude: lng,
		Venues:    venues,
		Now:       e.now(),
	})
	if err != nil {
		return Run{}, err
	}

	if err := e.sessions.Save(ctx, run); err != nil {
		return Run{}, errors.Wrap(err, "saving attempt session")
	}
	return run, nil
}

// ReportPositionFailure feeds a sensor failure into the run. A permission
// denial keeps the attempt alive for an explicit retry; anything else
// abandons it.
func (e *Engine) ReportPositionFailure(ctx context.Context, workerID int, runID string, permissionDenied bool) (Run, error) {
	return e.step(ctx, workerID, runID, EventPositionFailed{PermissionDenied: permissionDenied})
}

// RetryPosition re-enters location validation after a permission denial.
func (e *Engine) RetryPosition(ctx context.Context, workerID int, runID string) (Run, error) {
	return e.step(ctx, workerID, runID, EventRetryPosition{})
}

// SubmitPhoto accepts the captured frame and runs the AI validation. A
// validator failure is fatal for the attempt: no partial record survives.
func (e *Engine) SubmitPhoto(ctx context.Context, workerID int, runID string, photo []byte) (Run, error) {
	run, err := e.current(ctx, workerID, runID)
	if err != nil {
		return Run{}, err
	}

	run, err = Transition(run, EventPhotoCaptured{Photo: photo})
	if err != nil {
		return Run{}, err
	}

	req := vision.Request{Photo: photo}
	if run.Worker.DressCode != nil {
		req.DressCode = *run.Worker.DressCode
	}
	if ref := run.Worker.ReferenceImage; ref != nil && *ref != "" {
		reference, err := e.media.LoadImage(ctx, *ref)
		if err != nil {
			return e.abandon(ctx, workerID, run, errors.Wrap(err, "loading reference image"))
		}
		req.ReferencePhoto = reference
	}

	verdict, err := e.validator.Validate(ctx, req)
	if err != nil {
		return e.abandon(ctx, workerID, run, errors.Wrap(err, "validating photo"))
	}

	run, err = Transition(run, EventValidationCompleted{Verdict: verdict})
	if err != nil {
		return Run{}, err
	}

	if err := e.sessions.Save(ctx, run); err != nil {
		return Run{}, errors.Wrap(err, "saving attempt session")
	}
	return run, nil
}

// abandon applies the validation-failed transition and clears the session,
// returning the original error to the caller.
func (e *Engine) abandon(ctx context.Context, workerID int, run Run, cause error) (Run, error) {
	run, terr := Transition(run, EventValidationFailed{})
	if terr != nil {
		return Run{}, terr
	}
	if err := e.sessions.Delete(ctx, workerID); err != nil {
		log.Println("deleting attempt session:", err)
	}
	return run, cause
}

// RetryPhoto discards the captured frame and re-enters the camera.
func (e *Engine) RetryPhoto(ctx context.Context, workerID int, runID string) (Run, error) {
	return e.step(ctx, workerID, runID, EventRetryPhoto{})
}

// Finalize persists the draft record unchanged. Admissible when identity is
// MATCH or SKIPPED.
func (e *Engine) Finalize(ctx context.Context, workerID int, runID string) (entity.LogEntry, error) {
	return e.persist(ctx, workerID, runID, EventFinalize{})
}

// SaveWithIncident persists the draft record despite a flagged identity,
// acknowledging the discrepancy. Admissible when identity is NO_MATCH or
// NO_REF.
func (e *Engine) SaveWithIncident(ctx context.Context, workerID int, runID string) (entity.LogEntry, error) {
	return e.persist(ctx, workerID, runID, EventSaveWithIncident{})
}

func (e *Engine) persist(ctx context.Context, workerID int, runID string, ev Event) (entity.LogEntry, error) {
	run, err := e.current(ctx, workerID, runID)
	if err != nil {
		return entity.LogEntry{}, err
	}

	next, err := Transition(run, ev)
	if err != nil {
		return entity.LogEntry{}, err
	}

	if len(run.Photo) > 0 {
		res := e.uploader.UploadPhoto(ctx, run.ID, run.Photo)
		next.Draft.PhotoEvidence = res.Ref
		if !res.Stored {
			log.Printf("photo upload for attempt %s fell back to inline evidence: %v", run.ID, res.Err)
		}
	}

	entry := next.Draft
	if err := e.records.Insert(ctx, &entry); err != nil {
		// The session is kept: the worker is still on the result screen
		// and may try to save again.
		return entity.LogEntry{}, errors.Wrap(err, "inserting attendance record")
	}

	if err := e.sessions.Delete(ctx, workerID); err != nil {
		log.Println("deleting attempt session:", err)
	}

	return entry, nil
}
