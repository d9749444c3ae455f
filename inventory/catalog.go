package inventory

import (
	"errors"
	"sort"
)

// ErrMissingInput is returned by Load when the snapshot contained no
// resource tables at all. A missing individual service table is not an
// error; Get simply yields an empty table for it.
var ErrMissingInput = errors.New("inventory: no resource tables in input")

// Catalog is the read-only index of resource tables keyed by service
// name. It is built once per run and never mutated afterwards.
type Catalog struct {
	tables map[string]Table
}

// Load builds a catalog from the tables produced by the snapshot reader
// or the collectors.
func Load(tables map[string]Table) (*Catalog, error) {
	if len(tables) == 0 {
		return nil, ErrMissingInput
	}
	copied := make(map[string]Table, len(tables))
	for service, table := range tables {
		copied[service] = table
	}
	return &Catalog{tables: copied}, nil
}

// Get returns the table for a service. An unknown service yields an
// empty table, so callers treat "table absent" and "table empty"
// identically.
func (c *Catalog) Get(service string) Table {
	return c.tables[service]
}

// Services returns the known service names in sorted order.
func (c *Catalog) Services() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of records in the table for a service.
func (c *Catalog) Len(service string) int {
	return len(c.tables[service])
}
