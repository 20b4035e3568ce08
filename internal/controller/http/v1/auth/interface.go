package auth

import (
	"context"

	"presencia/backend/internal/entity"
)

type User interface {
	GetByCredential(ctx context.Context, credential string) (entity.User, error)
}
