// Package merge folds teaching-assistant rows into the course row they
// belong to.
package merge

import (
	"strings"

	"github.com/ppiankov/coursegrid/internal/model"
)

// taSuffix is the "teaching assistant" term used in teacher cells
const taSuffix = "助教"

// IsTA reports whether a cleaned teacher field names a teaching assistant
func IsTA(teacher string) bool {
	t := strings.TrimSpace(teacher)
	if t == "" {
		return false
	}
	return strings.EqualFold(t, "TA") || strings.HasSuffix(t, taSuffix)
}

// SameCore reports whether two records describe the same section:
// code, class, term order, group division, title, required flag and credits
// all match.
func SameCore(a, b *model.CourseRecord) bool {
	return a.Code == b.Code &&
		a.Class == b.Class &&
		a.TermOrder == b.TermOrder &&
		model.EqualStringPtr(a.GroupDiv, b.GroupDiv) &&
		a.Title == b.Title &&
		a.Required == b.Required &&
		a.Credits.Equal(b.Credits)
}

// Into folds ta into base in place
func Into(base *model.CourseRecord, ta *model.CourseRecord) {
	for _, t := range ta.Times {
		if t != "" && !contains(base.Times, t) {
			base.Times = append(base.Times, t)
		}
	}

	names := splitNames(base.Teacher)
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		seen[name] = true
	}
	for _, name := range splitNames(ta.Teacher) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	base.Teacher = strings.Join(names, ",")

	if !base.Cap.IsInt && ta.Cap.IsInt {
		base.Cap = ta.Cap
	}
	if base.Seq == nil && ta.Seq != nil {
		seq := *ta.Seq
		base.Seq = &seq
	}
	if base.Source != ta.Source {
		base.Source = base.Source + ";" + ta.Source
	}
}

func splitNames(s string) []string {
	var names []string
	for _, name := range strings.Split(s, ",") {
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
