package extract

import (
	"reflect"
	"testing"

	"github.com/ppiankov/coursegrid/internal/model"
)

func rawRow(cells ...string) RawRow {
	block := "TNEXB"
	return RawRow{Cells: cells, Block: &block, Source: "a.htm"}
}

func TestNormalizeSpace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  計算機  概論 ", "計算機 概論"},
		{"計算機　概論", "計算機 概論"},
		{"\t一/2,3\n", "一/2,3"},
		{"a b", "a b"},
		{"", ""},
		{"　", ""},
	}

	for _, tt := range tests {
		if got := NormalizeSpace(tt.in); got != tt.want {
			t.Errorf("NormalizeSpace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanTeacher(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"王 小明", "王小明"},
		{"王小明(兼任)", "王小明"},
		{"王小明（專任）", "王小明"},
		{"John Smith (Adjunct)", "JohnSmith"},
		{"TA", "TA"},
		{"(待聘)", ""},
	}

	for _, tt := range tests {
		if got := CleanTeacher(tt.in); got != tt.want {
			t.Errorf("CleanTeacher(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizer_Fields(t *testing.T) {
	n := NewNormalizer(model.DefaultConfig().Extract)

	rec := n.Normalize(rawRow("1", "0001", "A0001", "", "1", "A", "", "必", "3", "", "計算機概論", "60", "王小明(專任)", "一/2,3", "三/4"))

	if rec.Source != "a.htm" {
		t.Errorf("Expected source a.htm, got %s", rec.Source)
	}
	if rec.DeptBlock == nil || *rec.DeptBlock != "TNEXB" {
		t.Errorf("Expected dept block TNEXB, got %v", rec.DeptBlock)
	}
	if rec.SeqValue() != "0001" {
		t.Errorf("Expected seq 0001, got %q", rec.SeqValue())
	}
	if rec.Major != nil || rec.GroupDiv != nil {
		t.Error("Expected empty major and group_div to be nil")
	}
	if !rec.Credits.IsInt || rec.Credits.Int != 3 {
		t.Errorf("Expected integer credits 3, got %+v", rec.Credits)
	}
	if !rec.Cap.IsInt || rec.Cap.Int != 60 {
		t.Errorf("Expected integer cap 60, got %+v", rec.Cap)
	}
	if rec.Teacher != "王小明" {
		t.Errorf("Expected teacher 王小明, got %q", rec.Teacher)
	}
	if !reflect.DeepEqual(rec.Times, []string{"一/2,3", "三/4"}) {
		t.Errorf("Unexpected times: %v", rec.Times)
	}
	if rec.EnglishTaught || rec.Note != "" {
		t.Error("Expected no title markers")
	}
}

func TestNormalizer_FullWidthNumbers(t *testing.T) {
	n := NewNormalizer(model.DefaultConfig().Extract)

	rec := n.Normalize(rawRow("1", "０１２３", "", "", "1", "A", "", "必", "３", "", "專題", "５０", "王小明", "", ""))

	if !rec.Credits.IsInt || rec.Credits.Int != 3 {
		t.Errorf("Expected integer credits 3, got %+v", rec.Credits)
	}
	if !rec.Cap.IsInt || rec.Cap.Int != 50 {
		t.Errorf("Expected integer cap 50, got %+v", rec.Cap)
	}
	if rec.SeqValue() != "０１２３" {
		t.Errorf("Expected seq kept as written, got %q", rec.SeqValue())
	}
}

func TestNormalizer_NonNumericKeptVerbatim(t *testing.T) {
	n := NewNormalizer(model.DefaultConfig().Extract)

	rec := n.Normalize(rawRow("1", "", "A0001", "", "1", "A", "", "選", "3-4", "", "專題", "不限", "王小明", "", ""))

	if rec.Credits.IsInt || rec.Credits.Str != "3-4" {
		t.Errorf("Expected credits to stay \"3-4\", got %+v", rec.Credits)
	}
	if rec.Cap.IsInt || rec.Cap.Str != "不限" {
		t.Errorf("Expected cap to stay \"不限\", got %+v", rec.Cap)
	}
	if rec.Seq != nil {
		t.Errorf("Expected nil seq, got %q", *rec.Seq)
	}
	if rec.Times == nil || len(rec.Times) != 0 {
		t.Errorf("Expected empty non-nil times, got %#v", rec.Times)
	}
}

func TestNormalizer_TimeOrder(t *testing.T) {
	n := NewNormalizer(model.DefaultConfig().Extract)

	rec := n.Normalize(rawRow("1", "0001", "A0001", "", "1", "A", "", "必", "3", "", "T", "60", "X", "", "三/4"))
	if !reflect.DeepEqual(rec.Times, []string{"三/4"}) {
		t.Errorf("Expected only second slot, got %v", rec.Times)
	}
}

func TestNormalizer_TitleMarkers(t *testing.T) {
	n := NewNormalizer(model.DefaultConfig().Extract)

	tests := []struct {
		title   string
		want    string
		english bool
		note    string
	}{
		{"計算機概論", "計算機概論", false, ""},
		{"計算機概論(全英語授課)", "計算機概論", true, ""},
		{"計算機概論 （全英語授課）", "計算機概論", true, ""},
		{"計算機概論全英語授課", "計算機概論", true, ""},
		{"計算機概論(蘭陽校園)", "計算機概論", false, "蘭陽校園"},
		{"(全英語授課)計算機概論(蘭陽校園)", "計算機概論", true, "蘭陽校園"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			rec := n.Normalize(rawRow("1", "0001", "A0001", "", "1", "A", "", "必", "3", "", tt.title, "60", "X", "", ""))
			if rec.Title != tt.want {
				t.Errorf("Title = %q, want %q", rec.Title, tt.want)
			}
			if rec.EnglishTaught != tt.english {
				t.Errorf("EnglishTaught = %v, want %v", rec.EnglishTaught, tt.english)
			}
			if rec.Note != tt.note {
				t.Errorf("Note = %q, want %q", rec.Note, tt.note)
			}
		})
	}
}

func TestNormalizer_Deterministic(t *testing.T) {
	n := NewNormalizer(model.DefaultConfig().Extract)
	row := rawRow("1", "0001", "A0001", "X", "1", "A", "G1", "必", "3", "g", "計算機概論(全英語授課)", "60", "王小明,TA", "一/2,3", "三/4")

	first := n.Normalize(row)
	for i := 0; i < 5; i++ {
		if got := n.Normalize(row); !reflect.DeepEqual(first, got) {
			t.Fatalf("Normalize is not deterministic:\n%+v\n%+v", first, got)
		}
	}
}

func TestNormalizer_BlockIsCopied(t *testing.T) {
	n := NewNormalizer(model.DefaultConfig().Extract)
	row := rawRow(course("0001", "A0001")...)

	rec := n.Normalize(row)
	*row.Block = "CHANGED"
	if *rec.DeptBlock != "TNEXB" {
		t.Errorf("Expected record block to be independent of the row, got %s", *rec.DeptBlock)
	}
}
