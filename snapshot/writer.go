package snapshot

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/cloudinv/aws-dep-mapper/inventory"
)

// Write saves the collected tables as an inventory workbook: a styled
// Summary sheet of per-service, per-region counts followed by one sheet
// per service. Services with no records get no sheet.
func Write(path string, tables map[string]inventory.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeSummary(f, tables); err != nil {
		return err
	}

	for _, service := range sortedServices(tables) {
		table := tables[service]
		if len(table) == 0 {
			continue
		}
		if err := writeServiceSheet(f, service, table); err != nil {
			return err
		}
		slog.Info("wrote service sheet", "service", service, "rows", len(table))
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save inventory workbook %s: %w", path, err)
	}
	return nil
}

func writeSummary(f *excelize.File, tables map[string]inventory.Table) error {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create summary style: %w", err)
	}

	titles := []interface{}{"Service", "Region", "Resource Count"}
	if err := f.SetSheetRow(summarySheet, "A1", &titles); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}
	if err := f.SetCellStyle(summarySheet, "A1", "C1", header); err != nil {
		return fmt.Errorf("failed to style summary header: %w", err)
	}

	row := 2
	for _, service := range sortedServices(tables) {
		for _, rc := range regionCounts(tables[service]) {
			values := []interface{}{service, rc.region, rc.count}
			ref, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(summarySheet, ref, &values); err != nil {
				return fmt.Errorf("failed to write summary row: %w", err)
			}
			row++
		}
	}
	return f.SetColWidth(summarySheet, "A", "C", 20)
}

func writeServiceSheet(f *excelize.File, service string, table inventory.Table) error {
	if _, err := f.NewSheet(service); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", service, err)
	}

	columns := unionColumns(table)
	titles := make([]interface{}, len(columns))
	for i, c := range columns {
		titles[i] = c
	}
	if err := f.SetSheetRow(service, "A1", &titles); err != nil {
		return fmt.Errorf("failed to write header of sheet %s: %w", service, err)
	}

	for i, rec := range table {
		values := make([]interface{}, len(columns))
		for j, column := range columns {
			v, _ := rec.Get(column)
			values[j] = v
		}
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(service, ref, &values); err != nil {
			return fmt.Errorf("failed to write row %d of sheet %s: %w", i+2, service, err)
		}
	}
	return nil
}

// unionColumns merges the column sets of all records in first-seen
// order, so rows with extra fields still land under a header.
func unionColumns(table inventory.Table) []string {
	var columns []string
	seen := make(map[string]bool)
	for _, rec := range table {
		for _, c := range rec.Columns() {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
	}
	return columns
}

type regionCount struct {
	region string
	count  int
}

func regionCounts(table inventory.Table) []regionCount {
	counts := make(map[string]int)
	for _, rec := range table {
		region, _ := rec.Get("Region")
		counts[region]++
	}
	regions := make([]string, 0, len(counts))
	for r := range counts {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	out := make([]regionCount, 0, len(regions))
	for _, r := range regions {
		out = append(out, regionCount{region: r, count: counts[r]})
	}
	return out
}

func sortedServices(tables map[string]inventory.Table) []string {
	services := make([]string, 0, len(tables))
	for s := range tables {
		services = append(services, s)
	}
	sort.Strings(services)
	return services
}
