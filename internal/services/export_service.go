package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/SIGA-2025/attendance-service/internal/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type exportService struct {
	reports ReportService
	logger  *slog.Logger
}

func NewExportService(reports ReportService, logger *slog.Logger) ExportService {
	return &exportService{
		reports: reports,
		logger:  logger,
	}
}

// ExportAbsenceReport renders the absence report as an XLSX workbook. Scoping
// and validation are delegated to the report service, so the export can never
// show more than the caller could query.
func (s *exportService) ExportAbsenceReport(ctx context.Context, req *ReportRequest, userID models.UserID) (*ExportResult, error) {
	report, err := s.reports.AbsenceReport(ctx, req, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Inasistencias"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Fecha", "Estudiante", "Código", "Estado", "Justificación", "Detalle"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for rowIdx, row := range report.Rows {
		justification := ""
		if row.JustificationStatus != nil {
			justification = string(*row.JustificationStatus)
		}
		detail := ""
		if row.JustificationText != nil {
			detail = *row.JustificationText
		}

		values := []interface{}{
			row.Date,
			row.StudentName,
			row.StudentCode,
			string(row.Status),
			justification,
			detail,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", rowIdx+1, err)
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "F", 22); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	fileName := fmt.Sprintf("inasistencias_%s_%s_%s.xlsx",
		report.Section.Letter,
		req.DateFrom.Format("2006-01-02"),
		req.DateTo.Format("2006-01-02"))

	s.logger.Info("absence report exported",
		"section_id", report.Section.ID,
		"rows", report.Total,
		"file", fileName,
		"user_id", userID)

	return &ExportResult{
		FileName:    fileName,
		ContentType: xlsxContentType,
		Data:        buf.Bytes(),
	}, nil
}
