package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/littlegems/admissions/internal/db"
	"github.com/littlegems/admissions/internal/models"
)

var exportHeader = []string{
	"Reference", "Status", "Submitted", "Parent", "Email", "Phone",
	"Region", "Child", "DOB", "Gender", "Grade", "Academic Year", "Contacts",
}

type exportRow struct {
	app   models.Application
	child models.ApplicationChild
}

// loadExportRows flattens applications to one row per child, optionally
// filtered by ?status=.
func loadExportRows(r *http.Request) ([]exportRow, error) {
	q := db.Conn().Model(&models.Application{}).Order("submitted_at desc")
	if st := r.URL.Query().Get("status"); st != "" {
		q = q.Where("status = ?", st)
	}
	var apps []models.Application
	if err := q.Find(&apps).Error; err != nil {
		return nil, err
	}

	var rows []exportRow
	for _, app := range apps {
		var kids []models.ApplicationChild
		if err := db.Conn().Where("application_id = ?", app.ID).Order("id asc").Find(&kids).Error; err != nil {
			return nil, err
		}
		for _, k := range kids {
			rows = append(rows, exportRow{app: app, child: k})
		}
	}
	return rows, nil
}

func (e exportRow) strings() []string {
	return []string{
		e.app.ReferenceNumber,
		e.app.Status,
		e.app.SubmittedAt.Format("2006-01-02 15:04"),
		e.app.ParentFullName,
		e.app.ParentEmail,
		e.app.ParentPhone,
		e.app.ParentRegion,
		e.child.FirstName + " " + e.child.LastName,
		e.child.DateOfBirth.Format("2006-01-02"),
		e.child.Gender,
		e.child.GradeLevel,
		e.child.AcademicYear,
		strconv.Itoa(len(e.app.EmergencyContacts)),
	}
}

// GET /admin/applications.csv
func ApplicationsCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := loadExportRows(r)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("applications-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	cw := csv.NewWriter(w)
	_ = cw.Write(exportHeader)
	for _, row := range rows {
		_ = cw.Write(row.strings())
	}
	cw.Flush()
}

// GET /admin/applications.xlsx
func ApplicationsXLSX(w http.ResponseWriter, r *http.Request) {
	rows, err := loadExportRows(r)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Applications"
	f.SetSheetName("Sheet1", sheet)

	for col, h := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, row := range rows {
		for col, v := range row.strings() {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("applications-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	if err := f.Write(w); err != nil {
		http.Error(w, "failed to write workbook", http.StatusInternalServerError)
	}
}
