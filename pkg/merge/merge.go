// Package merge carries human-authored metadata from a previous session over
// to freshly scanned tables. Tables are matched by record location only.
package merge

import (
	"github.com/tosih/denso-rom-tool/pkg/models"
)

// Stats counts the outcome of a merge.
type Stats struct {
	// Matched fresh tables that received saved metadata.
	Matched int
	// Unmatched fresh tables without saved metadata.
	Unmatched int
	// Stale saved entries whose location no longer holds a table.
	Stale int
}

// Apply copies saved metadata onto fresh tables with the same location.
// Structural and decoded fields are never touched. Saved entries without
// a matching table are dropped and counted as stale.
func Apply[T models.Table](fresh []T, saved map[int]models.Metadata) Stats {
	var st Stats
	used := make(map[int]struct{}, len(saved))
	for _, t := range fresh {
		md, ok := saved[t.Position()]
		if !ok {
			st.Unmatched++
			continue
		}
		*t.Meta() = md
		used[t.Position()] = struct{}{}
		st.Matched++
	}
	st.Stale = len(saved) - len(used)
	return st
}

// Index returns the metadata of tables keyed by location. Tables without
// metadata and not selected are skipped.
func Index[T models.Table](tables []T) map[int]models.Metadata {
	out := make(map[int]models.Metadata, len(tables))
	for _, t := range tables {
		md := t.Meta()
		if md.HasMetadata() || md.Selected {
			out[t.Position()] = *md
		}
	}
	return out
}

// SharedAxisX returns the other tables that read their X axis from the same
// address as t.
func SharedAxisX[T models.Table](all []T, t models.Table) []T {
	var out []T
	pos := t.AxisX().Pos
	for _, o := range all {
		if o.Position() != t.Position() && o.AxisX().Pos == pos {
			out = append(out, o)
		}
	}
	return out
}

// Add sums two merge results.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Matched:   s.Matched + o.Matched,
		Unmatched: s.Unmatched + o.Unmatched,
		Stale:     s.Stale + o.Stale,
	}
}
