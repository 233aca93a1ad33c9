// Package export renders a brand's imposter register as a spreadsheet for
// takedown teams.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"brandguard/internal/domain"
)

const SheetName = "Imposters"

// Header is the first row of the sheet. One status column per report
// channel follows the fixed columns.
func Header() []string {
	h := []string{"Domain", "Status", "Source", "Detection rule", "First rank", "Last rank", "Detected at", "Last seen at", "Reviewed by", "Added by", "Full URL", "Page title"}
	for _, rt := range domain.ReportTypes {
		h = append(h, string(rt))
	}
	return h
}

// WriteXLSX writes one row per imposter, in the given order.
func WriteXLSX(w io.Writer, brand domain.Brand, imposters []domain.Imposter) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	header := Header()
	if err := setRow(f, 1, toCells(header)); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return err
	}
	for i, imp := range imposters {
		if err := setRow(f, i+2, row(imp)); err != nil {
			return fmt.Errorf("row %d (%s): %w", i+2, imp.Domain, err)
		}
	}
	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "A", last, 22); err != nil {
		return err
	}
	if err := f.SetDocProps(&excelize.DocProperties{Title: brand.Name + " imposters", Subject: brand.Domain}); err != nil {
		return err
	}
	return f.Write(w)
}

func setRow(f *excelize.File, n int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	return f.SetSheetRow(SheetName, cell, &cells)
}

func row(imp domain.Imposter) []interface{} {
	cells := []interface{}{
		imp.Domain,
		string(imp.Status),
		string(imp.Source),
		imp.DetectionRule,
		intOrBlank(imp.SearchRank),
		intOrBlank(imp.LastRank),
		imp.DetectedAt.UTC().Format(time.RFC3339),
		timeOrBlank(imp.LastSeenAt),
		strOrBlank(imp.ReviewedBy),
		strOrBlank(imp.AddedBy),
		imp.FullURL,
		imp.PageTitle,
	}
	byType := make(map[domain.ReportType]domain.ReportStatus, len(imp.Reports))
	for _, r := range imp.Reports {
		byType[r.ReportType] = r.Status
	}
	for _, rt := range domain.ReportTypes {
		st, ok := byType[rt]
		if !ok {
			st = domain.ReportNotReported
		}
		cells = append(cells, string(st))
	}
	return cells
}

func toCells(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func intOrBlank(p *int) interface{} {
	if p == nil {
		return ""
	}
	return *p
}

func timeOrBlank(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func strOrBlank(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
