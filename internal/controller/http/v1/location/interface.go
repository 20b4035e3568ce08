package location

import (
	"context"

	"presencia/backend/internal/repository/postgres/location"
)

type Location interface {
	GetList(ctx context.Context, filter location.Filter) ([]location.GetListResponse, int, error)
	GetDetailById(ctx context.Context, id int) (location.GetDetailByIdResponse, error)

	Create(ctx context.Context, request location.CreateRequest) (location.CreateResponse, error)
	UpdateColumns(ctx context.Context, request location.UpdateRequest) error
	Delete(ctx context.Context, id int) error
}
