package workflow

import (
	"context"
	"testing"
	"time"

	"presencia/backend/internal/entity"
	"presencia/backend/internal/service/upload"
	"presencia/backend/internal/service/vision"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSessions struct {
	runs map[int]Run
}

func newMemSessions() *memSessions { return &memSessions{runs: map[int]Run{}} }

func (m *memSessions) Load(_ context.Context, workerID int) (Run, error) {
	run, ok := m.runs[workerID]
	if !ok {
		return Run{}, ErrNoActiveRun
	}
	return run, nil
}

func (m *memSessions) Save(_ context.Context, run Run) error {
	m.runs[run.Worker.ID] = run
	return nil
}

func (m *memSessions) Delete(_ context.Context, workerID int) error {
	delete(m.runs, workerID)
	return nil
}

type stubVenues struct {
	venues []entity.Location
}

func (s stubVenues) Active(context.Context) ([]entity.Location, error) {
	return s.venues, nil
}

type stubRecords struct {
	inserted []entity.LogEntry
	err      error
}

func (s *stubRecords) Insert(_ context.Context, entry *entity.LogEntry) error {
	if s.err != nil {
		return s.err
	}
	entry.ID = len(s.inserted) + 1
	s.inserted = append(s.inserted, *entry)
	return nil
}

type stubValidator struct {
	verdict vision.Verdict
	err     error
	lastReq vision.Request
}

func (s *stubValidator) Validate(_ context.Context, req vision.Request) (vision.Verdict, error) {
	s.lastReq = req
	if s.err != nil {
		return vision.Verdict{}, s.err
	}
	return s.verdict, nil
}

type stubUploader struct{}

func (stubUploader) UploadPhoto(_ context.Context, runID string, _ []byte) upload.Result {
	return upload.Result{Ref: "statics/evidence/" + runID + ".jpg", Stored: true}
}

type stubMedia struct {
	images map[string][]byte
}

func (s stubMedia) LoadImage(_ context.Context, ref string) ([]byte, error) {
	data, ok := s.images[ref]
	if !ok {
		return nil, errors.New("image not found")
	}
	return data, nil
}

type fixture struct {
	engine    *Engine
	sessions  *memSessions
	records   *stubRecords
	validator *stubValidator
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	sessions := newMemSessions()
	records := &stubRecords{}
	validator := &stubValidator{}
	media := stubMedia{images: map[string][]byte{
		"statics/reference/ana.jpg": []byte("reference"),
	}}

	engine := NewEngine(sessions, stubVenues{venues: []entity.Location{venueAtOrigin()}}, records, validator, stubUploader{}, media)
	engine.now = func() time.Time { return now }

	seq := 0
	engine.newID = func() string {
		seq++
		return "run-" + string(rune('0'+seq))
	}

	return &fixture{engine: engine, sessions: sessions, records: records, validator: validator}
}

func TestScenarioExtraWaiterFinalize(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fridayAt("10:00"))
	worker := extraWaiter()

	run, err := f.engine.Start(ctx, worker, entity.TypeCheckIn)
	require.NoError(t, err)
	require.Equal(t, PhaseValidatingLocation, run.Phase)

	run, err = f.engine.ReportPosition(ctx, worker.ID, run.ID, 0, 0)
	require.NoError(t, err)
	require.Equal(t, PhaseResult, run.Phase)
	assert.Equal(t, entity.IdentitySkipped, run.Draft.IdentityStatus)
	assert.Equal(t, entity.DressCodeSkipped, run.Draft.DressCodeStatus)

	entry, err := f.engine.Finalize(ctx, worker.ID, run.ID)
	require.NoError(t, err)

	require.Len(t, f.records.inserted, 1)
	assert.Equal(t, entity.LocationValid, entry.LocationStatus)
	assert.Equal(t, entity.ScheduleOnTime, entry.ScheduleStatus)
	assert.Equal(t, entity.IdentitySkipped, entry.IdentityStatus)
	assert.Empty(t, entry.PhotoEvidence)

	_, err = f.sessions.Load(ctx, worker.ID)
	assert.ErrorIs(t, err, ErrNoActiveRun, "the session is cleared after a save")
}

func TestScenarioOffScheduleIncidentSave(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fridayAt("07:00"))
	worker := waiter()
	f.validator.verdict = vision.Verdict{IdentityMatch: false, DressCodeMatches: true, Description: "different person"}

	run, err := f.engine.Start(ctx, worker, entity.TypeCheckIn)
	require.NoError(t, err)
	require.Equal(t, PhaseOffScheduleWarning, run.Phase)

	run, err = f.engine.ConfirmOffSchedule(ctx, worker.ID, run.ID)
	require.NoError(t, err)

	run, err = f.engine.ReportPosition(ctx, worker.ID, run.ID, 0, 0)
	require.NoError(t, err)
	require.Equal(t, PhaseCamera, run.Phase)

	run, err = f.engine.SubmitPhoto(ctx, worker.ID, run.ID, []byte("frame"))
	require.NoError(t, err)
	require.Equal(t, PhaseResult, run.Phase)
	assert.Equal(t, entity.IdentityNoMatch, run.Draft.IdentityStatus)
	assert.Equal(t, []byte("reference"), f.validator.lastReq.ReferencePhoto)

	// A plain save is not admissible with a flagged identity.
	_, err = f.engine.Finalize(ctx, worker.ID, run.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Empty(t, f.records.inserted)

	entry, err := f.engine.SaveWithIncident(ctx, worker.ID, run.ID)
	require.NoError(t, err)

	require.Len(t, f.records.inserted, 1)
	assert.Equal(t, entity.IdentityNoMatch, entry.IdentityStatus)
	assert.Equal(t, entity.ScheduleOffSchedule, entry.ScheduleStatus)
	assert.Equal(t, "different person", entry.AIFeedback)
	assert.Contains(t, entry.PhotoEvidence, "statics/evidence/")
}

func TestScenarioPermissionDeniedRetry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fridayAt("10:00"))
	worker := waiter()
	f.validator.verdict = vision.Verdict{IdentityMatch: true, DressCodeMatches: true}

	run, err := f.engine.Start(ctx, worker, entity.TypeCheckOut)
	require.NoError(t, err)

	run, err = f.engine.ReportPositionFailure(ctx, worker.ID, run.ID, true)
	require.NoError(t, err)
	require.Equal(t, PhasePermissionDenied, run.Phase)

	run, err = f.engine.RetryPosition(ctx, worker.ID, run.ID)
	require.NoError(t, err)
	require.Equal(t, PhaseValidatingLocation, run.Phase)
	assert.Equal(t, entity.TypeCheckOut, run.Action, "the pending action survives the retry")

	run, err = f.engine.ReportPosition(ctx, worker.ID, run.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, PhaseCamera, run.Phase)
}

func TestGenericSensorFailureLeavesNoRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fridayAt("10:00"))
	worker := waiter()

	run, err := f.engine.Start(ctx, worker, entity.TypeCheckIn)
	require.NoError(t, err)

	run, err = f.engine.ReportPositionFailure(ctx, worker.ID, run.ID, false)
	require.NoError(t, err)
	assert.Equal(t, PhaseDashboard, run.Phase)

	assert.Empty(t, f.records.inserted)
	_, err = f.sessions.Load(ctx, worker.ID)
	assert.ErrorIs(t, err, ErrNoActiveRun)
}

func TestValidatorFailureLeavesNoRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fridayAt("10:00"))
	worker := waiter()
	f.validator.err = errors.New("vision service unavailable")

	run, err := f.engine.Start(ctx, worker, entity.TypeCheckIn)
	require.NoError(t, err)
	run, err = f.engine.ReportPosition(ctx, worker.ID, run.ID, 0, 0)
	require.NoError(t, err)

	run, err = f.engine.SubmitPhoto(ctx, worker.ID, run.ID, []byte("frame"))
	require.Error(t, err)
	assert.Equal(t, PhaseDashboard, run.Phase)

	assert.Empty(t, f.records.inserted)
	_, err = f.sessions.Load(ctx, worker.ID)
	assert.ErrorIs(t, err, ErrNoActiveRun)
}

func TestStaleRunResultsAreDiscarded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fridayAt("10:00"))
	worker := waiter()

	first, err := f.engine.Start(ctx, worker, entity.TypeCheckIn)
	require.NoError(t, err)

	// The worker navigated away and started over; the first run's results
	// must not apply to the new one.
	second, err := f.engine.Start(ctx, worker, entity.TypeCheckIn)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	_, err = f.engine.ReportPosition(ctx, worker.ID, first.ID, 0, 0)
	assert.ErrorIs(t, err, ErrStaleRun)
}

func TestPersistFailureKeepsSessionForRetry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fridayAt("10:00"))
	worker := extraWaiter()

	run, err := f.engine.Start(ctx, worker, entity.TypeCheckIn)
	require.NoError(t, err)
	run, err = f.engine.ReportPosition(ctx, worker.ID, run.ID, 0, 0)
	require.NoError(t, err)
	require.Equal(t, PhaseResult, run.Phase)

	f.records.err = errors.New("insert failed")
	_, err = f.engine.Finalize(ctx, worker.ID, run.ID)
	require.Error(t, err)

	// Still on the result screen; a second save succeeds and writes
	// exactly one record.
	f.records.err = nil
	entry, err := f.engine.Finalize(ctx, worker.ID, run.ID)
	require.NoError(t, err)
	assert.Len(t, f.records.inserted, 1)
	assert.Equal(t, entity.TypeCheckIn, entry.Type)
}

func TestCancelLeavesNoRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fridayAt("07:00"))
	worker := waiter()

	run, err := f.engine.Start(ctx, worker, entity.TypeCheckIn)
	require.NoError(t, err)
	require.Equal(t, PhaseOffScheduleWarning, run.Phase)

	run, err = f.engine.Cancel(ctx, worker.ID, run.ID)
	require.NoError(t, err)
	assert.Equal(t, PhaseDashboard, run.Phase)
	assert.Empty(t, f.records.inserted)
}
