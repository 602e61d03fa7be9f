package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"autoposter/internal/present"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("API", statusError, "disconnected", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "API:", "[ERROR] disconnected")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("API", statusOK, "connected", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestFeedbackKindFollowsLevel(t *testing.T) {
	cases := map[present.Level]statusKind{
		present.LevelSuccess: statusOK,
		present.LevelWarning: statusWarn,
		present.LevelError:   statusError,
		present.LevelInfo:    statusInfo,
	}
	for level, want := range cases {
		if got := feedbackKind(level); got != want {
			t.Fatalf("feedbackKind(%q) = %v, want %v", level, got, want)
		}
	}
}

func TestRenderTableWrapsLongCells(t *testing.T) {
	long := strings.Repeat("word ", 30)
	out := renderTable([]string{"ID", "Topic"}, [][]string{{"abc", long}}, nil)
	for _, line := range strings.Split(out, "\n") {
		if len([]rune(line)) > maxCellWidth+20 {
			t.Fatalf("line not wrapped: %q", line)
		}
	}
	if !strings.Contains(out, "abc") {
		t.Fatalf("row missing: %q", out)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
