package ui

import (
	"strings"
	"testing"
)

func TestTableAlignsColumns(t *testing.T) {
	tbl := NewTable(3)
	tbl.AddRow("1", "post", "Hello")
	tbl.AddRow("120", "report", "Quarterly")

	want := "1    post    Hello\n120  report  Quarterly\n"
	if got := tbl.String(); got != want {
		t.Fatalf("unexpected table:\n%q\nwant\n%q", got, want)
	}
}

func TestTableTruncatesLastColumn(t *testing.T) {
	tbl := NewTable(2)
	tbl.SetHeader("ID", "TITLE")
	tbl.AddRow("1", "A very long title that will not fit")
	tbl.SetMaxWidth(12)

	lines := strings.Split(strings.TrimRight(tbl.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	if !strings.HasSuffix(lines[1], "…") {
		t.Fatalf("expected truncated title, got %q", lines[1])
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"abcdef", 4, "abc…"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestTableEmpty(t *testing.T) {
	if got := NewTable(1).String(); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}
