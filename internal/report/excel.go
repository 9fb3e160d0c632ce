package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const requestsSheet = "Requests"

var requestsHeader = []string{
	"ID", "Title", "Care Type", "Status", "Owner", "Owner Email", "Location",
	"Assistant", "Hours", "Budget", "Applications", "Pending", "Created At",
}

var requestsWidths = []float64{8, 32, 16, 12, 22, 28, 18, 22, 8, 12, 14, 10, 20}

// RequestsWorkbook renders rows into an xlsx file with a frozen header row.
func RequestsWorkbook(rows []RequestRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(requestsSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	if err := f.SetSheetRow(requestsSheet, "A1", &requestsHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	last, _ := excelize.ColumnNumberToName(len(requestsHeader))
	if err := f.SetCellStyle(requestsSheet, "A1", last+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	for i, w := range requestsWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(requestsSheet, col, col, w); err != nil {
			return nil, fmt.Errorf("column width: %w", err)
		}
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{
			r.ID, r.Title, r.CareType, r.Status, r.Owner, r.OwnerEmail, r.Location,
			r.Assistant, r.Hours, r.Budget, r.Applications, r.Pending,
			r.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(requestsSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(requestsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
