// Package dedup removes records whose sequence id was already claimed.
package dedup

import "github.com/ppiankov/coursegrid/internal/model"

// DropFunc is called once for every record removed as a duplicate
type DropFunc func(rec model.CourseRecord)

// BySeq keeps the first record for each non-empty seq in stream order and
// drops every later one. Records without a seq are always kept.
func BySeq(records []model.CourseRecord, onDrop DropFunc) []model.CourseRecord {
	seen := make(map[string]bool, len(records))
	out := make([]model.CourseRecord, 0, len(records))

	for _, rec := range records {
		seq := rec.SeqValue()
		if seq != "" {
			if seen[seq] {
				if onDrop != nil {
					onDrop(rec)
				}
				continue
			}
			seen[seq] = true
		}
		out = append(out, rec)
	}

	return out
}
