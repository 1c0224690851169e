package service

import (
	"context"
	"fmt"

	"bookshelf-backend/internal/domains/entry/model"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Bookshelf"

var exportHeaders = []string{"Title", "Author", "Start date", "End date", "Rating", "Notes"}

// ExportEntries builds a workbook with one row per entry under a bold header row.
func (s *EntryService) ExportEntries(ctx context.Context) (*excelize.File, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("export entries: %w", err)
	}

	f, err := buildEntriesExcelFile(model.ToResponses(entries))
	if err != nil {
		return nil, fmt.Errorf("export entries: %w", err)
	}
	return f, nil
}

func buildEntriesExcelFile(entries []model.EntryResponse) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, err
	}

	for i, e := range entries {
		row := i + 2
		values := []string{e.Title, e.Author, e.StartDate, deref(e.EndDate), deref(e.Rating), deref(e.Notes)}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
