package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Word", "Accuracy", "Correct"}
	rows := [][]string{
		{"a", "97.50%", "12"},
		{"abandon", "8.00%", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Word    Accuracy Correct" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "a         97.50%      12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "abandon    8.00%       3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Meaning", "N"}, [][]string{{"貓", "1"}, {"cat", "2"}}, nil)
	if lines[1] != "貓      1" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
	if lines[2] != "cat     2" {
		t.Fatalf("unexpected narrow row: %q", lines[2])
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 0); got != "abcdef" {
		t.Fatalf("expected no truncation, got %q", got)
	}
	if got := truncate("abcdef", 4); displayWidth(got) > 4 {
		t.Fatalf("expected at most 4 cells, got %q", got)
	}
	if got := truncate("貓貓貓", 4); displayWidth(got) > 4 {
		t.Fatalf("expected at most 4 cells, got %q", got)
	}
}
