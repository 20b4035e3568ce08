// Package export renders attendance records for the admin panel's
// download formats.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"presencia/backend/internal/entity"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

var headers = []string{
	"ID", "Legajo", "Full Name", "Timestamp", "Type", "Location",
	"Location Status", "Schedule Status", "Dress Code", "Identity", "AI Feedback",
}

func row(entry entity.LogEntry) []string {
	location := entry.LocationName
	if location == "" && entry.LocationID == nil {
		location = "-"
	}
	return []string{
		strconv.Itoa(entry.ID),
		entry.Legajo,
		entry.UserName,
		entry.Timestamp.Format("2006-01-02 15:04"),
		entry.Type,
		location,
		entry.LocationStatus,
		entry.ScheduleStatus,
		entry.DressCodeStatus,
		entry.IdentityStatus,
		entry.AIFeedback,
	}
}

// Xlsx renders the records into a single-sheet workbook.
func Xlsx(entries []entity.LogEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Attendance"
	f.SetSheetName("Sheet1", sheet)

	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, errors.Wrap(err, "writing header")
		}
	}

	for i, entry := range entries {
		rowNum := i + 2
		for j, value := range row(entry) {
			cell := fmt.Sprintf("%c%d", 'A'+j, rowNum)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, errors.Wrap(err, "writing entry row")
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errors.Wrap(err, "writing workbook")
	}
	return buf.Bytes(), nil
}

// CSV renders the records as a comma-separated table.
func CSV(entries []entity.LogEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(headers); err != nil {
		return nil, errors.Wrap(err, "writing csv header")
	}
	for _, entry := range entries {
		if err := w.Write(row(entry)); err != nil {
			return nil, errors.Wrap(err, "writing csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "flushing csv")
	}
	return buf.Bytes(), nil
}

// PDF renders the records as a landscape table with a title line.
func PDF(entries []entity.LogEntry, companyName string, from, to time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 8)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 12)
	title := fmt.Sprintf("%s - Attendance %s to %s", companyName,
		from.Format("2006-01-02"), to.Format("2006-01-02"))
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")

	widths := []float64{10, 20, 40, 30, 22, 30, 22, 28, 20, 22, 33}

	pdf.SetFont("Arial", "B", 8)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, entry := range entries {
		for i, value := range row(entry) {
			if len(value) > 40 {
				value = value[:40]
			}
			pdf.CellFormat(widths[i], 6, value, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "writing pdf")
	}
	return buf.Bytes(), nil
}
