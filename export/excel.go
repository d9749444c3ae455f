package export

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/cloudinv/aws-dep-mapper/topology"
)

// WriteWorkbook writes the dependency workbook: one sheet per topology,
// named by the topology's allocated identifier. An empty topology list
// produces a single informational sheet instead.
func WriteWorkbook(path string, topologies []topology.Topology) error {
	f := excelize.NewFile()
	defer f.Close()

	if len(topologies) == 0 {
		slog.Warn("no load balancers found in the inventory")
		if err := writeSheet(f, "No Load Balancers", PlaceholderRows(), true); err != nil {
			return err
		}
	} else {
		for i, t := range topologies {
			rows := Rows(t)
			if err := writeSheet(f, t.Name, rows, i == 0); err != nil {
				return err
			}
			slog.Debug("wrote topology sheet", "sheet", t.Name, "rows", len(rows))
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// writeSheet fills one sheet with the header and rows and sizes its
// columns. The first sheet reuses the workbook's default sheet so no
// empty "Sheet1" is left behind.
func writeSheet(f *excelize.File, name string, rows []Row, first bool) error {
	if first {
		if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
			return fmt.Errorf("failed to rename sheet %s: %w", name, err)
		}
	} else if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}

	cells := make([][]string, 0, len(rows)+1)
	cells = append(cells, Header)
	for _, row := range rows {
		cells = append(cells, []string{row.ResourceType, row.Name, row.ID, row.AdditionalInfo})
	}

	for i, row := range cells {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(name, ref, &values); err != nil {
			return fmt.Errorf("failed to write row %d of sheet %s: %w", i+1, name, err)
		}
	}

	return sizeColumns(f, name, cells)
}

// sizeColumns widens each column to its longest value plus padding,
// capped at 50 characters.
func sizeColumns(f *excelize.File, name string, cells [][]string) error {
	if len(cells) == 0 {
		return nil
	}
	for col := range cells[0] {
		maxLen := 0
		for _, row := range cells {
			if col < len(row) && len(row[col]) > maxLen {
				maxLen = len(row[col])
			}
		}
		width := float64(maxLen + 2)
		if width > 50 {
			width = 50
		}
		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, colName, colName, width); err != nil {
			return fmt.Errorf("failed to size column %s of sheet %s: %w", colName, name, err)
		}
	}
	return nil
}
