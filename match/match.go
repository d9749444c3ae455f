// Package match implements the heuristic lookups that stitch
// independently collected resource tables together. The snapshots carry
// no foreign keys, only overlapping identifier strings, so every
// strategy here is best-effort: no match is a normal outcome, reported
// through the ok flag or an empty slice.
package match

import (
	"strings"

	"github.com/cloudinv/aws-dep-mapper/inventory"
)

// ScopeExact returns the first record in table order that lies in the
// given region and whose resolved field equals target exactly.
func ScopeExact(table inventory.Table, region string, field inventory.Field, target string) (inventory.Record, bool) {
	for _, rec := range table {
		if r, ok := rec.Get("Region"); !ok || r != region {
			continue
		}
		if v, ok := field.Resolve(rec); ok && v == target {
			return rec, true
		}
	}
	return inventory.Record{}, false
}

// Containing returns the first record whose resolved field contains
// needle as a substring. Matching is case-sensitive; identifiers are
// routinely embedded in longer composite cells (ARN lists, multi-line
// target cells), which is why containment is used instead of equality.
//
// More than one record can match; the first in table order wins. That
// ambiguity is inherited from the data, not resolved here.
func Containing(table inventory.Table, field inventory.Field, needle string) (inventory.Record, bool) {
	if needle == "" {
		return inventory.Record{}, false
	}
	for _, rec := range table {
		if v, ok := field.Resolve(rec); ok && strings.Contains(v, needle) {
			return rec, true
		}
	}
	return inventory.Record{}, false
}

// AllContaining returns every record, in table order, whose resolved
// field contains needle as a substring. Same semantics as Containing,
// used where the relation is one-to-many (a load balancer and its
// target groups).
func AllContaining(table inventory.Table, field inventory.Field, needle string) []inventory.Record {
	if needle == "" {
		return nil
	}
	var out []inventory.Record
	for _, rec := range table {
		if v, ok := field.Resolve(rec); ok && strings.Contains(v, needle) {
			out = append(out, rec)
		}
	}
	return out
}

// Overlapping returns every record, in table order, whose comma-token
// set for the field intersects tokens. Used for security-group based
// correlation, which is intentionally many-to-many.
func Overlapping(table inventory.Table, field inventory.Field, tokens map[string]struct{}) []inventory.Record {
	if len(tokens) == 0 {
		return nil
	}
	var out []inventory.Record
	for _, rec := range table {
		v, ok := field.Resolve(rec)
		if !ok {
			continue
		}
		if intersects(Tokens(v), tokens) {
			out = append(out, rec)
		}
	}
	return out
}

// Tokens splits a comma-delimited cell into its trimmed, non-empty
// tokens.
func Tokens(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

func intersects(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for t := range a {
		if _, ok := b[t]; ok {
			return true
		}
	}
	return false
}
