package logentry

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"presencia/backend/foundation/web"
	"presencia/backend/internal/auth"
	"presencia/backend/internal/entity"
	"presencia/backend/internal/pkg/repository/postgresql"
	"presencia/backend/internal/repository/postgres"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

// Insert writes one finished attempt. Records are append-only.
func (r Repository) Insert(ctx context.Context, entry *entity.LogEntry) error {
	entry.CreatedAt = time.Now()
	_, err := r.NewInsert().Model(entry).Returning("id").Exec(ctx, &entry.ID)
	if err != nil {
		return errors.Wrap(err, "inserting log entry")
	}
	return nil
}

// LatestForUser returns the most recent record for a worker, or nil when
// there is none. BLOCKED records can be excluded so the dashboard's
// clocked-in state is not flipped by a blocked attempt.
func (r Repository) LatestForUser(ctx context.Context, userID int, excludeBlocked bool) (*entity.LogEntry, error) {
	var detail entity.LogEntry

	q := r.NewSelect().Model(&detail).
		Where("user_id = ?", userID).
		Order("ts DESC").
		Limit(1)
	if excludeBlocked {
		q = q.Where("type != ?", entity.TypeBlocked)
	}

	err := q.Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "selecting latest log entry")
	}
	return &detail, nil
}

// TodayForAll returns every record whose timestamp falls on now's calendar
// day. Feeds the presence refresher.
func (r Repository) TodayForAll(ctx context.Context, now time.Time) ([]entity.LogEntry, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var list []entity.LogEntry
	err := r.NewSelect().Model(&list).
		Where("ts >= ? AND ts < ?", dayStart, dayEnd).
		Order("ts ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "selecting today's log entries")
	}
	return list, nil
}

// ListRange returns the full records for [from, to], oldest first. Feeds
// the export formats.
func (r Repository) ListRange(ctx context.Context, from, to time.Time) ([]entity.LogEntry, error) {
	_, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return nil, err
	}

	var list []entity.LogEntry
	err = r.NewSelect().Model(&list).
		Where("ts >= ? AND ts <= ?", from, to).
		Order("ts ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "selecting log entries range")
	}
	return list, nil
}

func (r Repository) GetList(ctx context.Context, filter Filter) ([]GetListResponse, int, error) {
	_, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return nil, 0, err
	}

	whereQuery := `
			WHERE
				1=1
			`

	if filter.UserID != nil {
		whereQuery += fmt.Sprintf(" AND e.user_id = %d", *filter.UserID)
	}
	if filter.LocationID != nil {
		whereQuery += fmt.Sprintf(" AND e.location_id = %d", *filter.LocationID)
	}
	if filter.Type != nil {
		recordType := strings.ToUpper(*filter.Type)
		if recordType != entity.TypeCheckIn && recordType != entity.TypeCheckOut && recordType != entity.TypeBlocked {
			return nil, 0, web.NewRequestError(errors.New("unknown record type"), http.StatusBadRequest)
		}
		whereQuery += fmt.Sprintf(" AND e.type = '%s'", recordType)
	}
	if filter.FromDate != nil {
		from, err := date.ParseDate(*filter.FromDate)
		if err != nil {
			return nil, 0, web.NewRequestError(errors.Wrap(err, "date parse"), http.StatusBadRequest)
		}
		whereQuery += fmt.Sprintf(" AND e.ts >= '%s'", from.Format("2006-01-02"))
	}
	if filter.ToDate != nil {
		to, err := date.ParseDate(*filter.ToDate)
		if err != nil {
			return nil, 0, web.NewRequestError(errors.Wrap(err, "date parse"), http.StatusBadRequest)
		}
		whereQuery += fmt.Sprintf(" AND e.ts < '%s'::date + 1", to.Format("2006-01-02"))
	}
	orderQuery := "ORDER BY e.ts desc"

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
			e.id,
			e.user_id,
			e.user_name,
			e.legajo,
			e.ts,
			e.type,
			e.location_id,
			e.location_name,
			e.location_status,
			e.schedule_status,
			e.dress_code_status,
			e.identity_status,
			e.photo_evidence,
			e.ai_feedback
		FROM log_entries e
		%s %s %s %s
	`, whereQuery, orderQuery, limitQuery, offsetQuery)

	rows, err := r.QueryContext(ctx, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "selecting log entries"), http.StatusInternalServerError)
	}

	var list []GetListResponse

	for rows.Next() {
		var detail GetListResponse
		var ts time.Time

		if err = rows.Scan(
			&detail.ID,
			&detail.UserID,
			&detail.UserName,
			&detail.Legajo,
			&ts,
			&detail.Type,
			&detail.LocationID,
			&detail.LocationName,
			&detail.LocationStatus,
			&detail.ScheduleStatus,
			&detail.DressCodeStatus,
			&detail.IdentityStatus,
			&detail.PhotoEvidence,
			&detail.AIFeedback); err != nil {
			return nil, 0, web.NewRequestError(errors.Wrap(err, "scanning log entry list"), http.StatusBadRequest)
		}
		detail.Timestamp = ts.Format(time.RFC3339)

		list = append(list, detail)
	}

	countQuery := fmt.Sprintf(`
		SELECT
			count(e.id)
		FROM log_entries e
		%s
	`, whereQuery)

	countRows, err := r.QueryContext(ctx, countQuery)
	if err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "selecting log entries"), http.StatusInternalServerError)
	}

	count := 0

	for countRows.Next() {
		if err = countRows.Scan(&count); err != nil {
			return nil, 0, web.NewRequestError(errors.Wrap(err, "scanning log entry count"), http.StatusInternalServerError)
		}
	}

	return list, count, nil
}

// Delete removes a record for good. Entries carry no soft-delete columns,
// correcting the log means removing the bad row.
func (r Repository) Delete(ctx context.Context, id int) error {
	_, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return err
	}

	res, err := r.NewDelete().Table("log_entries").Where("id = ?", id).Exec(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "deleting log entry"), http.StatusBadRequest)
	}

	rows, err := res.RowsAffected()
	if err == nil && rows == 0 {
		return web.NewRequestError(errors.Errorf("log_entries: nothing to delete with id %d", id), http.StatusNotFound)
	}

	return nil
}

func (r Repository) GetDetailById(ctx context.Context, id int) (entity.LogEntry, error) {
	_, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return entity.LogEntry{}, err
	}

	var detail entity.LogEntry
	err = r.NewSelect().Model(&detail).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.LogEntry{}, web.NewRequestError(postgres.ErrNotFound, http.StatusBadRequest)
	}
	if err != nil {
		return entity.LogEntry{}, web.NewRequestError(errors.Wrap(err, "selecting log entry detail"), http.StatusBadRequest)
	}

	return detail, nil
}
