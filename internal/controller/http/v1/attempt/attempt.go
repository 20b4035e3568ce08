package attempt

import (
	"io"
	"net/http"
	"strings"
	"time"

	"presencia/backend/foundation/web"
	"presencia/backend/internal/attendance/workflow"
	"presencia/backend/internal/auth"
	"presencia/backend/internal/entity"

	"github.com/pkg/errors"
)

// Controller drives one worker's clock-in/clock-out attempt through the
// workflow engine. Every endpoint except start carries the run id so a
// result from an abandoned attempt can never touch a newer one.
type Controller struct {
	engine *workflow.Engine
	users  Users
}

func NewController(engine *workflow.Engine, users Users) *Controller {
	return &Controller{engine: engine, users: users}
}

func (uc Controller) claims(c *web.Context) (auth.Claims, error) {
	claims, ok := c.Ctx.Value(auth.Key).(auth.Claims)
	if !ok {
		return auth.Claims{}, web.NewRequestError(errors.New("missing claims"), http.StatusUnauthorized)
	}
	return claims, nil
}

func (uc Controller) respondRun(c *web.Context, run workflow.Run, err error) error {
	if err != nil {
		if errors.Is(err, workflow.ErrStaleRun) || errors.Is(err, workflow.ErrNoActiveRun) {
			return c.RespondError(web.NewRequestError(err, http.StatusConflict))
		}
		if errors.Is(err, workflow.ErrInvalidTransition) {
			return c.RespondError(web.NewRequestError(err, http.StatusConflict))
		}
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   run,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) Start(c *web.Context) error {
	claims, err := uc.claims(c)
	if err != nil {
		return c.RespondError(err)
	}

	var request StartRequest
	if err := c.BindFunc(&request, "Action"); err != nil {
		return c.RespondError(err)
	}

	action := strings.ToUpper(request.Action)
	if action != entity.TypeCheckIn && action != entity.TypeCheckOut {
		return c.RespondError(web.NewRequestError(errors.New("action must be CHECK_IN or CHECK_OUT"), http.StatusBadRequest))
	}

	worker, err := uc.users.GetActiveByID(c.Ctx, claims.UserId)
	if err != nil {
		return c.RespondError(err)
	}

	run, err := uc.engine.Start(c.Ctx, worker, action)
	return uc.respondRun(c, run, err)
}

func (uc Controller) ConfirmOffSchedule(c *web.Context) error {
	claims, err := uc.claims(c)
	if err != nil {
		return c.RespondError(err)
	}

	var request RunRequest
	if err := c.BindFunc(&request, "RunID"); err != nil {
		return c.RespondError(err)
	}

	run, err := uc.engine.ConfirmOffSchedule(c.Ctx, claims.UserId, request.RunID)
	return uc.respondRun(c, run, err)
}

func (uc Controller) Cancel(c *web.Context) error {
	claims, err := uc.claims(c)
	if err != nil {
		return c.RespondError(err)
	}

	var request RunRequest
	if err := c.BindFunc(&request, "RunID"); err != nil {
		return c.RespondError(err)
	}

	run, err := uc.engine.Cancel(c.Ctx, claims.UserId, request.RunID)
	return uc.respondRun(c, run, err)
}

func (uc Controller) ReportPosition(c *web.Context) error {
	claims, err := uc.claims(c)
	if err != nil {
		return c.RespondError(err)
	}

	var request PositionRequest
	if err := c.BindFunc(&request, "RunID", "Latitude", "Longitude"); err != nil {
		return c.RespondError(err)
	}

	run, err := uc.engine.ReportPosition(c.Ctx, claims.UserId, request.RunID, *request.Latitude, *request.Longitude)
	return uc.respondRun(c, run, err)
}

func (uc Controller) ReportPositionFailure(c *web.Context) error {
	claims, err := uc.claims(c)
	if err != nil {
		return c.RespondError(err)
	}

	var request PositionFailureRequest
	if err := c.BindFunc(&request, "RunID"); err != nil {
		return c.RespondError(err)
	}

	run, err := uc.engine.ReportPositionFailure(c.Ctx, claims.UserId, request.RunID, request.PermissionDenied)
	return uc.respondRun(c, run, err)
}

func (uc Controller) RetryPosition(c *web.Context) error {
	claims, err := uc.claims(c)
	if err != nil {
		return c.RespondError(err)
	}

	var request RunRequest
	if err := c.BindFunc(&request, "RunID"); err != nil {
		return c.RespondError(err)
	}

	run, err := uc.engine.RetryPosition(c.Ctx, claims.UserId, request.RunID)
	return uc.respondRun(c, run, err)
}

// SubmitPhoto accepts the captured frame as multipart form data and runs
// the AI validation.
func (uc Controller) SubmitPhoto(c *web.Context) error {
	claims, err := uc.claims(c)
	if err != nil {
		return c.RespondError(err)
	}

	runID := c.PostForm("run_id")
	if runID == "" {
		return c.RespondError(web.NewRequestError(errors.New("run_id is required"), http.StatusBadRequest))
	}

	header, err := c.FormFile("photo")
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.New("photo is required"), http.StatusBadRequest))
	}

	file, err := header.Open()
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.Wrap(err, "opening photo"), http.StatusBadRequest))
	}
	defer file.Close()

	photo, err := io.ReadAll(file)
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.Wrap(err, "reading photo"), http.StatusBadRequest))
	}

	run, err := uc.engine.SubmitPhoto(c.Ctx, claims.UserId, runID, photo)
	return uc.respondRun(c, run, err)
}

func (uc Controller) RetryPhoto(c *web.Context) error {
	claims, err := uc.claims(c)
	if err != nil {
		return c.RespondError(err)
	}

	var request RunRequest
	if err := c.BindFunc(&request, "RunID"); err != nil {
		return c.RespondError(err)
	}

	run, err := uc.engine.RetryPhoto(c.Ctx, claims.UserId, request.RunID)
	return uc.respondRun(c, run, err)
}

// savedResponse is the payload for a persisted attempt. The client keeps
// the confirmation screen up for closes_in_seconds, then signs the worker
// out.
func savedResponse(entry entity.LogEntry) map[string]interface{} {
	return map[string]interface{}{
		"data": map[string]interface{}{
			"record":            entry,
			"closes_in_seconds": int(workflow.ObservationDelay / time.Second),
		},
		"status": true,
	}
}

func (uc Controller) Finalize(c *web.Context) error {
	claims, err := uc.claims(c)
	if err != nil {
		return c.RespondError(err)
	}

	var request RunRequest
	if err := c.BindFunc(&request, "RunID"); err != nil {
		return c.RespondError(err)
	}

	entry, err := uc.engine.Finalize(c.Ctx, claims.UserId, request.RunID)
	if err != nil {
		if errors.Is(err, workflow.ErrInvalidTransition) {
			return c.RespondError(web.NewRequestError(err, http.StatusConflict))
		}
		return c.RespondError(err)
	}

	return c.Respond(savedResponse(entry), http.StatusOK)
}

func (uc Controller) SaveWithIncident(c *web.Context) error {
	claims, err := uc.claims(c)
	if err != nil {
		return c.RespondError(err)
	}

	var request RunRequest
	if err := c.BindFunc(&request, "RunID"); err != nil {
		return c.RespondError(err)
	}

	entry, err := uc.engine.SaveWithIncident(c.Ctx, claims.UserId, request.RunID)
	if err != nil {
		if errors.Is(err, workflow.ErrInvalidTransition) {
			return c.RespondError(web.NewRequestError(err, http.StatusConflict))
		}
		return c.RespondError(err)
	}

	return c.Respond(savedResponse(entry), http.StatusOK)
}
