package dashboard

import (
	"io"
	"net/http"
	"time"

	"presencia/backend/foundation/web"
	"presencia/backend/internal/attendance/presence"
	"presencia/backend/internal/attendance/schedule"
	"presencia/backend/internal/auth"
	"presencia/backend/internal/entity"

	"github.com/pkg/errors"
)

const streamInterval = 10 * time.Second

type Controller struct {
	users     Users
	logs      LogEntries
	refresher *presence.Refresher
}

func NewController(users Users, logs LogEntries, refresher *presence.Refresher) *Controller {
	return &Controller{users: users, logs: logs, refresher: refresher}
}

// Status tells the mobile client which action it may offer. A worker is
// clocked in exactly when their most recent non-blocked record is a
// check-in.
func (uc Controller) Status(c *web.Context) error {
	claims, ok := c.Ctx.Value(auth.Key).(auth.Claims)
	if !ok {
		return c.RespondError(web.NewRequestError(errors.New("missing claims"), http.StatusUnauthorized))
	}

	worker, err := uc.users.GetActiveByID(c.Ctx, claims.UserId)
	if err != nil {
		return c.RespondError(err)
	}

	latest, err := uc.logs.LatestForUser(c.Ctx, claims.UserId, true)
	if err != nil {
		return c.RespondError(err)
	}

	clockedIn := latest != nil && latest.Type == entity.TypeCheckIn

	now := time.Now()
	data := map[string]interface{}{
		"clocked_in":  clockedIn,
		"on_schedule": schedule.IsWithin(worker.Schedule, now),
		"delay":       schedule.DelayInfo(worker.Schedule, now),
	}
	if latest != nil {
		data["last_record"] = latest
	}

	return c.Respond(map[string]interface{}{
		"data":   data,
		"status": true,
	}, http.StatusOK)
}

// Snapshot returns the latest venue presence board.
func (uc Controller) Snapshot(c *web.Context) error {
	snap, ok := uc.refresher.Latest()
	if !ok {
		return c.RespondError(web.NewRequestError(errors.New("snapshot not ready"), http.StatusServiceUnavailable))
	}

	return c.Respond(map[string]interface{}{
		"data":   snap,
		"status": true,
	}, http.StatusOK)
}

// Stream pushes the presence board over SSE until the client goes away.
func (uc Controller) Stream(c *web.Context) error {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	send := func() bool {
		snap, ok := uc.refresher.Latest()
		if !ok {
			return true
		}
		c.SSEvent("snapshot", snap)
		return true
	}

	send()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Ctx.Done():
			return false
		case <-c.Request.Context().Done():
			return false
		case <-ticker.C:
			return send()
		}
	})

	return nil
}
