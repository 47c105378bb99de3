// Package extract classifies timetable table rows and normalizes them into
// course records.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ppiankov/coursegrid/internal/model"
	"golang.org/x/net/html"
)

// Column positions in the timetable schema
const (
	colGrade = iota
	colSeq
	colCode
	colMajor
	colTermOrder
	colClass
	colGroupDiv
	colRequired
	colCredits
	colGroup
	colTitle
	colCap
	colTeacher
	colTime1
	colTime2
)

// RowKind is the classification of one table row
type RowKind int

const (
	RowSkip   RowKind = iota // Header, spacer or decoration row
	RowHeader                // Department header; updates the parser state
	RowData                  // Course row
)

func (k RowKind) String() string {
	switch k {
	case RowHeader:
		return "header"
	case RowData:
		return "data"
	default:
		return "skip"
	}
}

// ParserState is the department context carried from one row to the next
type ParserState struct {
	Block *string
}

// RawRow is a data row's normalized cell texts plus the context it was read in
type RawRow struct {
	Cells  []string
	Block  *string
	Source string
}

// Cell returns column i, or "" when the row is shorter
func (r RawRow) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// RowParser walks a timetable document's rows
type RowParser struct {
	minCells   int
	strictRows bool
	marker     string
	blockRe    *regexp.Regexp
}

// NewRowParser creates a row parser from extraction settings
func NewRowParser(cfg model.ExtractConfig) *RowParser {
	minCells := cfg.MinCells
	if minCells <= colTime1 {
		minCells = colTime2 + 1
	}

	p := &RowParser{
		minCells:   minCells,
		strictRows: cfg.StrictRows,
		marker:     cfg.DeptMarker,
	}
	if cfg.DeptMarker != "" {
		p.blockRe = regexp.MustCompile(regexp.QuoteMeta(cfg.DeptMarker) + `([^　]+)`)
	}
	return p
}

// Parse returns the data rows of one document in document order. The
// department context starts empty for every document.
func (p *RowParser) Parse(htmlText string, source string) ([]RawRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}

	var rows []RawRow
	state := ParserState{}
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var row RawRow
		var kind RowKind
		state, row, kind = p.ClassifyRow(state, tr, source)
		if kind == RowData {
			rows = append(rows, row)
		}
	})

	return rows, nil
}

// ClassifyRow decides what a single tr is and returns the state for the
// next row. Only RowData results carry a populated RawRow.
func (p *RowParser) ClassifyRow(state ParserState, tr *goquery.Selection, source string) (ParserState, RawRow, RowKind) {
	if p.marker != "" {
		text := flattenText(tr.Nodes...)
		if strings.Contains(text, p.marker) {
			if m := p.blockRe.FindStringSubmatch(text); m != nil {
				block := m[1]
				state.Block = &block
			}
			return state, RawRow{}, RowHeader
		}
	}

	tds := tr.Find("td")
	if tds.Length() < p.minCells {
		return state, RawRow{}, RowSkip
	}

	cells := make([]string, 0, tds.Length())
	tds.Each(func(_ int, td *goquery.Selection) {
		cells = append(cells, NormalizeSpace(td.Text()))
	})

	row := RawRow{Cells: cells, Block: state.Block, Source: source}
	if !p.accepts(row) {
		return state, RawRow{}, RowSkip
	}
	return state, row, RowData
}

// accepts reports whether a wide-enough row is a course row: a numeric
// sequence cell, or (unless strict) a non-empty course code.
func (p *RowParser) accepts(row RawRow) bool {
	if model.IsDigits(row.Cell(colSeq)) {
		return true
	}
	if p.strictRows {
		return false
	}
	return row.Cell(colCode) != ""
}

// flattenText joins the trimmed, non-empty text nodes under the given nodes
// with single spaces.
func flattenText(nodes ...*html.Node) string {
	var parts []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}
