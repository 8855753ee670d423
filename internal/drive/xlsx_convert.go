package drive

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// convertXLSXToCSV writes the first sheet of an XLSX file as CSV. Blank rows are
// dropped and the file is renamed into place only once fully written.
func convertXLSXToCSV(xlsxPath, csvPath string) error {
	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("failed to open xlsx file %s: %w", xlsxPath, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("xlsx file %s has no sheets", xlsxPath)
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	tmpPath := csvPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create csv file %s: %w", tmpPath, err)
	}
	defer os.Remove(tmpPath)

	w := csv.NewWriter(out)
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			out.Close()
			return fmt.Errorf("failed to read row from %s: %w", xlsxPath, err)
		}
		if len(strings.Join(record, "")) == 0 {
			continue
		}
		if err := w.Write(record); err != nil {
			out.Close()
			return fmt.Errorf("failed to write csv row to %s: %w", tmpPath, err)
		}
	}
	w.Flush()

	if err := rows.Error(); err != nil {
		out.Close()
		return fmt.Errorf("error iterating rows in %s: %w", xlsxPath, err)
	}
	if err := w.Error(); err != nil {
		out.Close()
		return fmt.Errorf("failed to flush csv %s: %w", tmpPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close csv %s: %w", tmpPath, err)
	}

	return os.Rename(tmpPath, csvPath)
}
