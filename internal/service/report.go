package service

import (
	"context"
	"fmt"
	"strings"

	"jsmc-rsvp/internal/model"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const reportSheet = "RSVPs"

// ReportService aggregates the ledger for the admin dashboard and exports.
type ReportService struct{ db *gorm.DB }

func NewReportService(db *gorm.DB) *ReportService { return &ReportService{db: db} }

// DashboardStats groups the ledger by event, earliest event first.
func (s *ReportService) DashboardStats(ctx context.Context) ([]model.DashboardStat, error) {
	stats := []model.DashboardStat{}
	err := s.db.WithContext(ctx).Model(&model.RsvpResponse{}).
		Select("program_name, event_name, event_date, event_day, " +
			"SUM(rsvp_count) AS total_rsvps, SUM(kids_rsvp_count) AS total_kids, COUNT(*) AS total_responses").
		Group("program_name, event_name, event_date, event_day").
		Order("event_date, program_name, event_name").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return stats, nil
}

func (s *ReportService) MemberDetails(ctx context.Context, programName, eventName string) ([]model.MemberDetail, error) {
	details := []model.MemberDetail{}
	err := s.db.WithContext(ctx).Model(&model.RsvpResponse{}).
		Select("mem_name, mem_phone_number, rsvp_count, kids_rsvp_count").
		Where("program_name = ? AND event_name = ?", programName, eventName).
		Order("id").
		Scan(&details).Error
	if err != nil {
		return nil, fmt.Errorf("member details: %w", err)
	}
	return details, nil
}

// ExportReport renders the member details of one event as an .xlsx
// workbook with a trailing totals row.
func (s *ReportService) ExportReport(ctx context.Context, programName, eventName string) (string, []byte, error) {
	details, err := s.MemberDetails(ctx, programName, eventName)
	if err != nil {
		return "", nil, err
	}
	if len(details) == 0 {
		return "", nil, fmt.Errorf("rsvps for %s / %s: %w", programName, eventName, ErrNotFound)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return "", nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(reportSheet, "A1", &[]interface{}{"Name", "Phone", "Adults", "Kids"}); err != nil {
		return "", nil, fmt.Errorf("write header: %w", err)
	}
	var adults, kids int
	for i, d := range details {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{d.MemName, d.MemPhoneNumber, d.RsvpCount, d.KidsRsvpCount}
		if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
			return "", nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
		adults += d.RsvpCount
		kids += d.KidsRsvpCount
	}
	totalCell, _ := excelize.CoordinatesToCellName(1, len(details)+2)
	if err := f.SetSheetRow(reportSheet, totalCell, &[]interface{}{"Total", "", adults, kids}); err != nil {
		return "", nil, fmt.Errorf("write totals: %w", err)
	}

	if bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(reportSheet, "A1", "D1", bold)
		_ = f.SetCellStyle(reportSheet, totalCell, fmt.Sprintf("D%d", len(details)+2), bold)
	}
	_ = f.SetColWidth(reportSheet, "A", "B", 28)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", nil, fmt.Errorf("write workbook: %w", err)
	}
	return reportFileName(programName, eventName), buf.Bytes(), nil
}

func reportFileName(programName, eventName string) string {
	clean := func(s string) string {
		return strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
				return r
			case r == ' ' || r == '_':
				return '_'
			}
			return -1
		}, s)
	}
	return fmt.Sprintf("%s_%s_rsvps.xlsx", clean(programName), clean(eventName))
}
