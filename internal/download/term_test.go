package download

import (
	"testing"
	"time"
)

func TestTermCode(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2024-08-01", "1131"},
		{"2024-12-31", "1131"},
		{"2025-01-15", "1131"},
		{"2025-02-01", "1132"},
		{"2025-07-31", "1132"},
		{"2025-08-01", "1141"},
		{"2026-10-16", "1151"},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			d, err := time.Parse("2006-01-02", tt.date)
			if err != nil {
				t.Fatal(err)
			}
			if got := TermCode(d); got != tt.want {
				t.Errorf("TermCode(%s) = %s, want %s", tt.date, got, tt.want)
			}
		})
	}
}

func TestArchiveURL(t *testing.T) {
	got := ArchiveURL("https://esquery.tku.edu.tw/acad/upload/%sCLASS.RAR", "1131")
	if got != "https://esquery.tku.edu.tw/acad/upload/1131CLASS.RAR" {
		t.Errorf("Unexpected URL: %s", got)
	}
}
