package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"telehealth/internal/domain"
)

const sheetName = "Readings"

// WriteXLSX writes readings as a single-sheet workbook. Measurements are
// written as numbers so they chart directly.
func WriteXLSX(w io.Writer, readings []domain.HealthReading) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("export.WriteXLSX header: %w", err)
	}

	for i := range readings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export.WriteXLSX: %w", err)
		}
		row := xlsxRow(&readings[i])
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("export.WriteXLSX row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export.WriteXLSX write: %w", err)
	}
	return nil
}

func xlsxRow(r *domain.HealthReading) []interface{} {
	row := make([]interface{}, len(columns))
	for i, v := range readingToRow(r) {
		row[i] = v
	}
	for i, v := range map[int]*float64{2: r.Systolic, 3: r.Diastolic, 4: r.Value, 7: r.Confidence} {
		if v != nil {
			row[i] = *v
		}
	}
	return row
}
