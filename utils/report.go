package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"adconnect/models"

	"github.com/jinzhu/now"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var ErrInvalidRange = errors.New("invalid date range")

const reportDateLayout = "2006-01-02"

// DateRange bounds report rows by created_at. Zero ends are open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDateRange reads optional YYYY-MM-DD bounds and widens them to whole
// days.
func ParseDateRange(from, to string) (DateRange, error) {
	var r DateRange
	if from = strings.TrimSpace(from); from != "" {
		t, err := time.ParseInLocation(reportDateLayout, from, time.Local)
		if err != nil {
			return r, fmt.Errorf("%w: from %q", ErrInvalidRange, from)
		}
		r.From = now.With(t).BeginningOfDay()
	}
	if to = strings.TrimSpace(to); to != "" {
		t, err := time.ParseInLocation(reportDateLayout, to, time.Local)
		if err != nil {
			return r, fmt.Errorf("%w: to %q", ErrInvalidRange, to)
		}
		r.To = now.With(t).EndOfDay()
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return r, fmt.Errorf("%w: to is before from", ErrInvalidRange)
	}
	return r, nil
}

func (r DateRange) scope(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !r.From.IsZero() {
			db = db.Where(column+" >= ?", r.From)
		}
		if !r.To.IsZero() {
			db = db.Where(column+" <= ?", r.To)
		}
		return db
	}
}

type reportSheet struct {
	name    string
	headers []string
	rows    [][]interface{}
}

// BuildReport writes students, payments and subscriptions created within r to
// a workbook, one sheet each.
func BuildReport(db *gorm.DB, r DateRange) (*excelize.File, error) {
	var students []models.Student
	if err := db.Scopes(r.scope("created_at")).Order("id").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("load students: %w", err)
	}
	var payments []models.Payment
	if err := db.Scopes(r.scope("payments.created_at")).Preload("Client").Preload("Package").Order("id").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	var subs []models.Subscription
	if err := db.Scopes(r.scope("subscriptions.created_at")).Preload("Package").Order("id").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}

	studentSheet := reportSheet{
		name:    "Students",
		headers: []string{"ID", "Name", "Email", "Phone", "Status", "Town", "Address", "Company", "Created At"},
	}
	studentNames := make(map[uint]string, len(students))
	for _, s := range students {
		studentNames[s.ID] = s.Name
		studentSheet.rows = append(studentSheet.rows, []interface{}{
			s.ID, s.Name, s.Email, s.Phone, s.Status, s.Town, s.Address, s.Company, formatTime(s.CreatedAt),
		})
	}

	paymentSheet := reportSheet{
		name:    "Payments",
		headers: []string{"ID", "Client", "Phone", "Course", "Package", "Plan", "Amount", "Amount Paid", "Status", "M-Pesa Code", "Result", "Paid At", "Created At"},
	}
	for _, p := range payments {
		paymentSheet.rows = append(paymentSheet.rows, []interface{}{
			p.ID, p.Client.Name, p.Phone, p.CourseID, p.Package.PackageName, p.Plan, p.Amount, p.AmountPaid,
			p.Status, derefString(p.MpesaCode), p.ResultDesc, formatTimePtr(p.Date), formatTime(p.CreatedAt),
		})
	}

	subSheet := reportSheet{
		name:    "Subscriptions",
		headers: []string{"ID", "Student ID", "Student", "Package", "Plan", "Start", "End", "Status"},
	}
	for _, s := range subs {
		name, ok := studentNames[s.UserID]
		if !ok {
			var st models.Student
			if err := db.Select("id", "name").First(&st, s.UserID).Error; err == nil {
				name = st.Name
				studentNames[s.UserID] = name
			}
		}
		subSheet.rows = append(subSheet.rows, []interface{}{
			s.ID, s.UserID, name, s.Package.PackageName, s.PackagePlan, formatTime(s.StartDate), formatTime(s.EndDate), s.Status,
		})
	}

	f := excelize.NewFile()
	for i, sheet := range []reportSheet{studentSheet, paymentSheet, subSheet} {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return nil, err
		}
		if err := writeSheet(f, sheet); err != nil {
			return nil, fmt.Errorf("write %s: %w", sheet.name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, sheet reportSheet) error {
	header := make([]interface{}, len(sheet.headers))
	for i, h := range sheet.headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet.name, "A1", &header); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(sheet.headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet.name, "A1", lastCol+"1", style); err != nil {
		return err
	}

	for i, row := range sheet.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet.name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
