package logentry

import (
	"context"
	"time"

	"presencia/backend/internal/entity"
	"presencia/backend/internal/repository/postgres/logentry"
	"presencia/backend/internal/repository/postgres/settings"
)

type LogEntry interface {
	GetList(ctx context.Context, filter logentry.Filter) ([]logentry.GetListResponse, int, error)
	GetDetailById(ctx context.Context, id int) (entity.LogEntry, error)
	ListRange(ctx context.Context, from, to time.Time) ([]entity.LogEntry, error)
	Delete(ctx context.Context, id int) error
}

type Settings interface {
	GetInfo(ctx context.Context) (settings.GetInfoResponse, error)
}
