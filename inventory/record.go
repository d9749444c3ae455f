package inventory

// Record is a single collected resource: an ordered mapping from column
// name to a scalar value rendered as a string. Collectors build records
// with Set; after a catalog is loaded the record is treated as read-only.
type Record struct {
	columns []string
	values  map[string]string
}

// NewRecord returns an empty record.
func NewRecord() Record {
	return Record{values: make(map[string]string)}
}

// Set stores a value under the given column. The column keeps the
// position of its first Set, so sheet layouts stay stable.
func (r *Record) Set(column, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[column]; !ok {
		r.columns = append(r.columns, column)
	}
	r.values[column] = value
}

// Get returns the value stored under column. The second return is false
// when the column was never set.
func (r Record) Get(column string) (string, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Columns returns the column names in insertion order.
func (r Record) Columns() []string {
	return r.columns
}

// Len returns the number of columns in the record.
func (r Record) Len() int {
	return len(r.columns)
}

// Table is an ordered sequence of records sharing one service tag.
type Table []Record
