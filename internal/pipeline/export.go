package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"leadflow/internal"
)

// ExportLeadsToXLSX writes a lead table to disk, one row per surviving
// lead, keeping the input column order including passthrough columns.
func ExportLeadsToXLSX(table internal.LeadTable, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	columns := table.Columns
	if len(columns) == 0 {
		columns = internal.ManagedColumns()
	}

	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for r, lead := range table.Leads {
		for c, column := range columns {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(sheet, cell, cellValue(lead, column))
		}
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return f.SaveAs(outputPath)
}

func cellValue(lead internal.LeadRecord, column string) string {
	switch canonicalColumn(column) {
	case internal.ColFirstName:
		return lead.FirstName
	case internal.ColLastName:
		return lead.LastName
	case internal.ColCompany:
		return lead.Company
	case internal.ColEmailAddress:
		return lead.Email
	case internal.ColLinkedInURL:
		return lead.LinkedInURL
	case internal.ColProcessingStatus:
		return lead.Status
	default:
		return lead.Extra[column]
	}
}
