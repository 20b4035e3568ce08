package settings

import (
	"context"
	"net/http"
	"time"

	"presencia/backend/foundation/web"
	"presencia/backend/internal/auth"
	"presencia/backend/internal/pkg/repository/postgresql"

	"github.com/pkg/errors"
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

func (r Repository) GetInfo(ctx context.Context) (GetInfoResponse, error) {
	var detail GetInfoResponse
	err := r.NewSelect().
		Model(&detail).
		Where("deleted_at IS NULL").
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return GetInfoResponse{}, &web.Error{
			Err:    errors.New("company data not found!"),
			Status: http.StatusNotFound,
		}
	}
	return detail, nil
}

func (r Repository) UpdateAll(ctx context.Context, request UpdateRequest, logoURL *string) error {
	claims, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return err
	}

	if err := r.ValidateStruct(&request, "ID", "CompanyName"); err != nil {
		return err
	}

	q := r.NewUpdate().Table("settings").Where("deleted_at IS NULL AND id = ?", request.ID)
	q.Set("company_name = ?", request.CompanyName)
	if logoURL != nil {
		q.Set("logo_url = ?", logoURL)
	}
	q.Set("updated_at = ?", time.Now())
	q.Set("updated_by = ?", claims.UserId)

	_, err = q.Exec(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "updating settings"), http.StatusBadRequest)
	}

	return nil
}
