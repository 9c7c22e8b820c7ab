package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Date", "Sessions", "Work"}
	rows := [][]string{
		{"Sun, Oct 18", "12", "8"},
		{"Sat, Oct 17", "3", "10"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Date        Sessions Work" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Sun, Oct 18       12    8" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Sat, Oct 17        3   10" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableUsesDisplayWidth(t *testing.T) {
	lines := formatTable([]string{"Name", "N"}, [][]string{
		{"集中", "1"},
		{"ab", "2"},
	}, map[int]bool{1: true})
	if lines[1] != "集中 1" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
	if lines[2] != "ab   2" {
		t.Fatalf("unexpected narrow row: %q", lines[2])
	}
}
