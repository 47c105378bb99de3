package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/coursegrid/internal/model"
)

// parenthesized annotations in teacher cells, half or full width
var reTeacherNote = regexp.MustCompile(`\(.*?\)|（.*?）`)

// Normalizer maps a data row into a CourseRecord
type Normalizer struct {
	englishRe  *regexp.Regexp
	campusRe   *regexp.Regexp
	campusNote string
}

// NewNormalizer creates a normalizer from extraction settings
func NewNormalizer(cfg model.ExtractConfig) *Normalizer {
	return &Normalizer{
		englishRe:  markerPattern(cfg.EnglishMarker),
		campusRe:   markerPattern(cfg.CampusMarker),
		campusNote: cfg.CampusNote,
	}
}

// markerPattern matches a title marker with optional surrounding brackets
func markerPattern(marker string) *regexp.Regexp {
	if marker == "" {
		return nil
	}
	return regexp.MustCompile(`[(（【\[]?` + regexp.QuoteMeta(marker) + `[)）】\]]?`)
}

// Normalize builds a record from one row. The same row always yields the
// same record.
func (n *Normalizer) Normalize(row RawRow) model.CourseRecord {
	cell := func(i int) string {
		return NormalizeSpace(row.Cell(i))
	}

	rec := model.CourseRecord{
		Source:    row.Source,
		DeptBlock: copyString(row.Block),
		Grade:     cell(colGrade),
		Seq:       model.StringPtr(cell(colSeq)),
		Code:      cell(colCode),
		Major:     model.StringPtr(cell(colMajor)),
		TermOrder: cell(colTermOrder),
		Class:     cell(colClass),
		GroupDiv:  model.StringPtr(cell(colGroupDiv)),
		Required:  cell(colRequired),
		Credits:   model.ParseIntOrString(cell(colCredits)),
		Group:     cell(colGroup),
		Cap:       model.ParseIntOrString(cell(colCap)),
		Teacher:   CleanTeacher(cell(colTeacher)),
		Times:     []string{},
	}

	for _, t := range []string{cell(colTime1), cell(colTime2)} {
		if t != "" {
			rec.Times = append(rec.Times, t)
		}
	}

	rec.Title, rec.EnglishTaught, rec.Note = n.cleanTitle(cell(colTitle))
	return rec
}

// cleanTitle strips the English-taught and campus markers from a title
func (n *Normalizer) cleanTitle(title string) (string, bool, string) {
	english := false
	note := ""

	if n.englishRe != nil && n.englishRe.MatchString(title) {
		english = true
		title = n.englishRe.ReplaceAllString(title, "")
	}
	if n.campusRe != nil && n.campusRe.MatchString(title) {
		note = n.campusNote
		title = n.campusRe.ReplaceAllString(title, "")
	}

	return NormalizeSpace(title), english, note
}

// NormalizeSpace collapses every run of Unicode whitespace, including the
// ideographic space, into one ASCII space and trims the ends.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CleanTeacher drops parenthesized annotations and all spaces
func CleanTeacher(s string) string {
	s = reTeacherNote.ReplaceAllString(NormalizeSpace(s), "")
	return strings.ReplaceAll(s, " ", "")
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
