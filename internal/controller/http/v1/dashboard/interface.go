package dashboard

import (
	"context"

	"presencia/backend/internal/entity"
)

type Users interface {
	GetActiveByID(ctx context.Context, id int) (entity.User, error)
}

type LogEntries interface {
	LatestForUser(ctx context.Context, userID int, excludeBlocked bool) (*entity.LogEntry, error)
}
