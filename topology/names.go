package topology

import "strconv"

// maxNameLen is the spreadsheet sheet-name limit the output identifiers
// must fit in.
const maxNameLen = 31

// NameAllocator derives the output identifier for each topology from
// its region and load balancer name. Identifiers are truncated to the
// sheet-name limit; when truncation makes two topologies collide the
// later one gets a "~2", "~3", ... suffix instead of silently
// overwriting the earlier sheet. Allocation order is the builder's
// processing order, so results are reproducible across runs.
type NameAllocator struct {
	used map[string]bool
}

// NewNameAllocator returns an allocator with no names taken.
func NewNameAllocator() *NameAllocator {
	return &NameAllocator{used: make(map[string]bool)}
}

// Allocate returns a free identifier for the given region and load
// balancer name and marks it as taken.
func (a *NameAllocator) Allocate(region, lbName string) string {
	base := truncate(region+"_"+lbName, maxNameLen)
	if !a.used[base] {
		a.used[base] = true
		return base
	}
	for n := 2; ; n++ {
		suffix := "~" + strconv.Itoa(n)
		candidate := truncate(base, maxNameLen-len(suffix)) + suffix
		if !a.used[candidate] {
			a.used[candidate] = true
			return candidate
		}
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
