package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"presencia/backend/foundation/web"
	"presencia/backend/internal/auth"
	"presencia/backend/internal/entity"
	"presencia/backend/internal/pkg/repository/postgresql"
	"presencia/backend/internal/repository/postgres"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

func validRole(role string) bool {
	switch role {
	case auth.RoleAdmin, auth.RoleWaiter, auth.RoleExtraWaiter,
		auth.RoleKitchen, auth.RoleSecurity, auth.RoleOther, auth.RoleDashboard:
		return true
	}
	return false
}

// GetByCredential looks a worker up by legajo or dni for sign-in.
func (r Repository) GetByCredential(ctx context.Context, credential string) (entity.User, error) {
	var detail entity.User
	err := r.NewSelect().Model(&detail).
		Where("(legajo = ? OR dni = ?) AND deleted_at IS NULL", credential, credential).
		Scan(ctx)
	if err != nil {
		return entity.User{}, &web.Error{
			Err:    errors.New("worker not found!"),
			Status: http.StatusUnauthorized,
		}
	}

	return detail, nil
}

func (r Repository) GetList(ctx context.Context, filter Filter) ([]GetListResponse, int, error) {
	_, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return nil, 0, err
	}

	whereQuery := `
			WHERE
				u.deleted_at IS NULL
			`

	if filter.Search != nil {
		search := strings.Replace(*filter.Search, " ", "", -1)
		search = strings.Replace(search, "'", "''", -1)

		whereQuery += fmt.Sprintf(` AND
		(u.legajo ilike '%s' OR u.dni ilike '%s' OR u.full_name ilike '%s')`,
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}
	if filter.Role != nil {
		role := strings.ToUpper(*filter.Role)
		if !validRole(role) {
			return nil, 0, web.NewRequestError(errors.New("unknown role filter"), http.StatusBadRequest)
		}
		whereQuery += fmt.Sprintf(` AND u.role = '%s'`, role)
	}
	orderQuery := "ORDER BY u.created_at desc"

	var limitQuery, offsetQuery string

	if filter.Page != nil && filter.Limit != nil {
		offset := (*filter.Page - 1) * (*filter.Limit)
		filter.Offset = &offset
	}

	if filter.Limit != nil {
		limitQuery += fmt.Sprintf(" LIMIT %d", *filter.Limit)
	}

	if filter.Offset != nil {
		offsetQuery += fmt.Sprintf(" OFFSET %d", *filter.Offset)
	}

	query := fmt.Sprintf(`
		SELECT
			u.id,
			u.legajo,
			u.dni,
			u.full_name,
			u.role,
			u.dress_code
		FROM users u
		%s %s %s %s
	`, whereQuery, orderQuery, limitQuery, offsetQuery)

	rows, err := r.QueryContext(ctx, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, web.NewRequestError(postgres.ErrNotFound, http.StatusBadRequest)
	}
	if err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "selecting users"), http.StatusBadRequest)
	}

	var list []GetListResponse

	for rows.Next() {
		var detail GetListResponse
		if err = rows.Scan(
			&detail.ID,
			&detail.Legajo,
			&detail.Dni,
			&detail.FullName,
			&detail.Role,
			&detail.DressCode); err != nil {
			return nil, 0, web.NewRequestError(errors.Wrap(err, "scanning user list"), http.StatusBadRequest)
		}

		list = append(list, detail)
	}

	countQuery := fmt.Sprintf(`
		SELECT
			count(u.id)
		FROM  users u
			%s
	`, whereQuery)

	countRows, err := r.QueryContext(ctx, countQuery)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, web.NewRequestError(postgres.ErrNotFound, http.StatusBadRequest)
	}
	if err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "selecting users"), http.StatusBadRequest)
	}

	count := 0

	for countRows.Next() {
		if err = countRows.Scan(&count); err != nil {
			return nil, 0, web.NewRequestError(errors.Wrap(err, "scanning user count"), http.StatusBadRequest)
		}
	}

	return list, count, nil
}

func (r Repository) GetDetailById(ctx context.Context, id int) (GetDetailByIdResponse, error) {
	_, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return GetDetailByIdResponse{}, err
	}

	query := fmt.Sprintf(`
		SELECT
			u.id,
			u.legajo,
			u.dni,
			u.full_name,
			u.role,
			u.dress_code,
			u.reference_image,
			u.schedule,
			u.assigned_locations
		FROM
		    users u
		WHERE u.deleted_at IS NULL AND u.id = %d
	`, id)

	var detail GetDetailByIdResponse
	var scheduleBytes, locationBytes []byte

	err = r.QueryRowContext(ctx, query).Scan(
		&detail.ID,
		&detail.Legajo,
		&detail.Dni,
		&detail.FullName,
		&detail.Role,
		&detail.DressCode,
		&detail.ReferenceImage,
		&scheduleBytes,
		&locationBytes,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return GetDetailByIdResponse{}, web.NewRequestError(postgres.ErrNotFound, http.StatusBadRequest)
	}
	if err != nil {
		return GetDetailByIdResponse{}, web.NewRequestError(errors.Wrap(err, "selecting user detail"), http.StatusBadRequest)
	}

	if scheduleBytes != nil {
		if err := json.Unmarshal(scheduleBytes, &detail.Schedule); err != nil {
			return GetDetailByIdResponse{}, web.NewRequestError(errors.Wrap(err, "decoding schedule"), http.StatusBadRequest)
		}
	}
	if locationBytes != nil {
		if err := json.Unmarshal(locationBytes, &detail.AssignedLocations); err != nil {
			return GetDetailByIdResponse{}, web.NewRequestError(errors.Wrap(err, "decoding assigned locations"), http.StatusBadRequest)
		}
	}

	return detail, nil
}

// GetActiveByID returns the full worker row for a clock-in attempt.
func (r Repository) GetActiveByID(ctx context.Context, id int) (entity.User, error) {
	var detail entity.User
	err := r.NewSelect().Model(&detail).Where("id = ? AND deleted_at IS NULL", id).Scan(ctx)
	if err != nil {
		return entity.User{}, &web.Error{
			Err:    errors.New("worker not found!"),
			Status: http.StatusNotFound,
		}
	}
	return detail, nil
}

// GetAllActive returns every worker that has not been deleted. Used by the
// presence refresher.
func (r Repository) GetAllActive(ctx context.Context) ([]entity.User, error) {
	var list []entity.User
	err := r.NewSelect().Model(&list).Where("deleted_at IS NULL").Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "selecting active users")
	}
	return list, nil
}

func (r Repository) Create(ctx context.Context, request CreateRequest) (CreateResponse, error) {
	claims, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return CreateResponse{}, err
	}

	if err := r.ValidateStruct(&request, "Legajo", "Password", "FullName", "Role"); err != nil {
		return CreateResponse{}, err
	}

	legajoUsed := true
	if err := r.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT
    						CASE WHEN
    						(SELECT id FROM users WHERE legajo = '%s' AND deleted_at IS NULL) IS NOT NULL
    						THEN true ELSE false END`, *request.Legajo)).Scan(&legajoUsed); err != nil {
		return CreateResponse{}, web.NewRequestError(errors.Wrap(err, "legajo check"), http.StatusInternalServerError)
	}
	if legajoUsed {
		return CreateResponse{}, web.NewRequestError(errors.New("legajo is used"), http.StatusBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*request.Password), bcrypt.DefaultCost)
	if err != nil {
		return CreateResponse{}, web.NewRequestError(errors.Wrap(err, "hashing password"), http.StatusInternalServerError)
	}
	hashedPassword := string(hash)

	role := strings.ToUpper(*request.Role)
	if !validRole(role) {
		return CreateResponse{}, web.NewRequestError(errors.New("incorrect role"), http.StatusBadRequest)
	}

	var response CreateResponse
	response.Role = &role
	response.FullName = request.FullName
	response.Legajo = request.Legajo
	response.Dni = request.Dni
	response.Password = &hashedPassword
	response.DressCode = request.DressCode
	response.ReferenceImage = request.ReferenceImage
	response.Schedule = request.Schedule
	response.AssignedLocations = request.AssignedLocations
	response.CreatedAt = time.Now()
	response.CreatedBy = claims.UserId

	_, err = r.NewInsert().Model(&response).Returning("id").Exec(ctx, &response.ID)
	if err != nil {
		return CreateResponse{}, web.NewRequestError(errors.Wrap(err, "creating user"), http.StatusBadRequest)
	}

	response.Password = nil

	return response, nil
}

func (r Repository) UpdateColumns(ctx context.Context, request UpdateRequest) error {
	claims, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return err
	}

	if err := r.ValidateStruct(&request, "ID"); err != nil {
		return err
	}

	q := r.NewUpdate().Table("users").Where("deleted_at IS NULL AND id = ? ", request.ID)

	if request.Legajo != nil {
		legajoUsed := true
		if err := r.QueryRowContext(ctx, fmt.Sprintf("SELECT CASE WHEN (SELECT id FROM users WHERE legajo = '%s' AND deleted_at IS NULL AND id != %d) IS NOT NULL THEN true ELSE false END", *request.Legajo, request.ID)).Scan(&legajoUsed); err != nil {
			return web.NewRequestError(errors.Wrap(err, "legajo check"), http.StatusInternalServerError)
		}
		if legajoUsed {
			return web.NewRequestError(errors.New("legajo is used"), http.StatusBadRequest)
		}
		q.Set("legajo = ?", request.Legajo)
	}

	if request.Role != nil {
		role := strings.ToUpper(*request.Role)
		if !validRole(role) {
			return web.NewRequestError(errors.New("incorrect role"), http.StatusBadRequest)
		}
		q.Set("role = ?", role)
	}

	if request.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*request.Password), bcrypt.DefaultCost)
		if err != nil {
			return web.NewRequestError(errors.Wrap(err, "hashing password"), http.StatusInternalServerError)
		}
		q.Set("password = ?", string(hash))
	}

	if request.Dni != nil {
		q.Set("dni = ?", request.Dni)
	}
	if request.FullName != nil {
		q.Set("full_name = ?", request.FullName)
	}
	if request.DressCode != nil {
		q.Set("dress_code = ?", request.DressCode)
	}
	if request.ReferenceImage != nil {
		q.Set("reference_image = ?", request.ReferenceImage)
	}
	if request.Schedule != nil {
		schedule, err := json.Marshal(request.Schedule)
		if err != nil {
			return web.NewRequestError(errors.Wrap(err, "encoding schedule"), http.StatusBadRequest)
		}
		q.Set("schedule = ?", string(schedule))
	}
	if request.AssignedLocations != nil {
		locations, err := json.Marshal(request.AssignedLocations)
		if err != nil {
			return web.NewRequestError(errors.Wrap(err, "encoding assigned locations"), http.StatusBadRequest)
		}
		q.Set("assigned_locations = ?", string(locations))
	}
	q.Set("updated_at = ?", time.Now())
	q.Set("updated_by = ?", claims.UserId)

	_, err = q.Exec(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "updating user"), http.StatusBadRequest)
	}

	return nil
}

func (r Repository) Delete(ctx context.Context, id int) error {
	return r.DeleteRow(ctx, "users", id)
}
