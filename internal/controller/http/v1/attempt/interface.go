package attempt

import (
	"context"

	"presencia/backend/internal/entity"
)

type Users interface {
	GetActiveByID(ctx context.Context, id int) (entity.User, error)
}
