// Package snapshot reads and writes the inventory workbook: one sheet
// per service, first row the column headers, plus a Summary sheet the
// correlation side ignores.
package snapshot

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/cloudinv/aws-dep-mapper/inventory"
)

// summarySheet is the roll-up sheet; it carries no resource records.
const summarySheet = "Summary"

// Read loads every resource table from an inventory workbook. A
// missing or unreadable file is the only fatal condition; individual
// rows that carry no data are skipped with a warning.
func Read(path string) (map[string]inventory.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	slog.Info("reading inventory workbook", "path", path, "sheets", sheets)

	tables := make(map[string]inventory.Table)
	for _, sheet := range sheets {
		if sheet == summarySheet {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			tables[sheet] = nil
			continue
		}

		header := rows[0]
		var table inventory.Table
		for i, row := range rows[1:] {
			rec, ok := buildRecord(header, row)
			if !ok {
				slog.Warn("skipping row with no data", "sheet", sheet, "row", i+2)
				continue
			}
			table = append(table, rec)
		}
		tables[sheet] = table
		slog.Info("loaded sheet", "sheet", sheet, "rows", len(table))
	}
	return tables, nil
}

// buildRecord maps a sheet row onto the header columns. Short rows are
// padded with empty cells. The second return is false for rows without
// a single non-empty cell.
func buildRecord(header, row []string) (inventory.Record, bool) {
	rec := inventory.NewRecord()
	hasData := false
	for i, column := range header {
		if column == "" {
			continue
		}
		value := ""
		if i < len(row) {
			value = row[i]
		}
		if value != "" {
			hasData = true
		}
		rec.Set(column, value)
	}
	return rec, hasData
}
