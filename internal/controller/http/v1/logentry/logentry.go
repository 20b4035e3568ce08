package logentry

import (
	"fmt"
	"net/http"
	"reflect"
	"time"

	"presencia/backend/foundation/web"
	"presencia/backend/internal/repository/postgres/logentry"
	"presencia/backend/internal/service/export"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
)

type Controller struct {
	logEntry LogEntry
	settings Settings
}

func NewController(logEntry LogEntry, settings Settings) *Controller {
	return &Controller{logEntry, settings}
}

func (uc Controller) GetList(c *web.Context) error {
	var filter logentry.Filter

	if limit, ok := c.GetQueryFunc(reflect.Int, "limit").(*int); ok {
		filter.Limit = limit
	}
	if offset, ok := c.GetQueryFunc(reflect.Int, "offset").(*int); ok {
		filter.Offset = offset
	}
	if page, ok := c.GetQueryFunc(reflect.Int, "page").(*int); ok {
		filter.Page = page
	}
	if userID, ok := c.GetQueryFunc(reflect.Int, "user_id").(*int); ok {
		filter.UserID = userID
	}
	if locationID, ok := c.GetQueryFunc(reflect.Int, "location_id").(*int); ok {
		filter.LocationID = locationID
	}
	if recordType, ok := c.GetQueryFunc(reflect.String, "type").(*string); ok {
		filter.Type = recordType
	}
	if fromDate, ok := c.GetQueryFunc(reflect.String, "from").(*string); ok {
		filter.FromDate = fromDate
	}
	if toDate, ok := c.GetQueryFunc(reflect.String, "to").(*string); ok {
		filter.ToDate = toDate
	}
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}

	list, count, err := uc.logEntry.GetList(c.Ctx, filter)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"results": list,
			"count":   count,
		},
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) GetDetailById(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	response, err := uc.logEntry.GetDetailById(c.Ctx, id)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) Delete(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	if err := uc.logEntry.Delete(c.Ctx, id); err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}

// exportRange reads the mandatory from/to query params.
func (uc Controller) exportRange(c *web.Context) (time.Time, time.Time, error) {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, web.NewRequestError(errors.New("from and to parameters are required"), http.StatusBadRequest)
	}

	from, err := date.ParseDate(fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, web.NewRequestError(errors.New("invalid from date"), http.StatusBadRequest)
	}
	to, err := date.ParseDate(toStr)
	if err != nil {
		return time.Time{}, time.Time{}, web.NewRequestError(errors.New("invalid to date"), http.StatusBadRequest)
	}

	start := from.ToTime()
	end := to.ToTime().Add(24*time.Hour - time.Nanosecond)
	return start, end, nil
}

func (uc Controller) ExportXlsx(c *web.Context) error {
	start, end, err := uc.exportRange(c)
	if err != nil {
		return c.RespondError(err)
	}

	entries, err := uc.logEntry.ListRange(c.Ctx, start, end)
	if err != nil {
		return c.RespondError(err)
	}

	data, err := export.Xlsx(entries)
	if err != nil {
		return c.RespondError(err)
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", attachmentName("xlsx", start, end))
	c.Status(http.StatusOK)
	_, err = c.Writer.Write(data)
	return err
}

func (uc Controller) ExportCSV(c *web.Context) error {
	start, end, err := uc.exportRange(c)
	if err != nil {
		return c.RespondError(err)
	}

	entries, err := uc.logEntry.ListRange(c.Ctx, start, end)
	if err != nil {
		return c.RespondError(err)
	}

	data, err := export.CSV(entries)
	if err != nil {
		return c.RespondError(err)
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", attachmentName("csv", start, end))
	c.Status(http.StatusOK)
	_, err = c.Writer.Write(data)
	return err
}

func (uc Controller) ExportPDF(c *web.Context) error {
	start, end, err := uc.exportRange(c)
	if err != nil {
		return c.RespondError(err)
	}

	entries, err := uc.logEntry.ListRange(c.Ctx, start, end)
	if err != nil {
		return c.RespondError(err)
	}

	companyName := "Attendance"
	if info, err := uc.settings.GetInfo(c.Ctx); err == nil && info.CompanyName != "" {
		companyName = info.CompanyName
	}

	data, err := export.PDF(entries, companyName, start, end)
	if err != nil {
		return c.RespondError(err)
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", attachmentName("pdf", start, end))
	c.Status(http.StatusOK)
	_, err = c.Writer.Write(data)
	return err
}

func attachmentName(ext string, from, to time.Time) string {
	return fmt.Sprintf("attachment; filename=attendance-%s-%s.%s",
		from.Format("20060102"), to.Format("20060102"), ext)
}
