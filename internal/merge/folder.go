package merge

import "github.com/ppiankov/coursegrid/internal/model"

// Folder accumulates records in stream order, folding each TA row into the
// record emitted immediately before it.
type Folder struct {
	records []model.CourseRecord
	enabled bool
	merged  int
}

// NewFolder creates a folder. With enabled false every record is appended.
func NewFolder(enabled bool) *Folder {
	return &Folder{enabled: enabled}
}

// Push adds one record and reports whether it was merged into the previous one
func (f *Folder) Push(rec model.CourseRecord) bool {
	if f.enabled && len(f.records) > 0 {
		prev := &f.records[len(f.records)-1]
		if IsTA(rec.Teacher) && SameCore(prev, &rec) {
			Into(prev, &rec)
			f.merged++
			return true
		}
	}

	f.records = append(f.records, rec)
	return false
}

// Records returns the emitted records in order
func (f *Folder) Records() []model.CourseRecord {
	return f.records
}

// Merged returns how many records were folded into a predecessor
func (f *Folder) Merged() int {
	return f.merged
}
