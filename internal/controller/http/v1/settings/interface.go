package settings

import (
	"context"

	"presencia/backend/internal/repository/postgres/settings"
)

type Settings interface {
	GetInfo(ctx context.Context) (settings.GetInfoResponse, error)
	UpdateAll(ctx context.Context, request settings.UpdateRequest, logoURL *string) error
}
