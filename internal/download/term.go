// Package download fetches the timetable archive for an academic term and
// unpacks its pages.
package download

import (
	"fmt"
	"time"
)

// rocEpoch is the Gregorian year before ROC year 1
const rocEpoch = 1911

// TermCode returns the academic year and semester code for t, for example
// "1131" for the first semester of ROC year 113. The first semester runs
// August to January; February to July is the second semester of the
// academic year that started the previous August.
func TermCode(t time.Time) string {
	roc := t.Year() - rocEpoch

	switch month := t.Month(); {
	case month >= time.August:
		return fmt.Sprintf("%d1", roc)
	case month == time.January:
		return fmt.Sprintf("%d1", roc-1)
	default:
		return fmt.Sprintf("%d2", roc-1)
	}
}

// ArchiveURL fills the term code into an archive URL template
func ArchiveURL(template string, term string) string {
	return fmt.Sprintf(template, term)
}
