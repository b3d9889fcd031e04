package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0"},
		{-5, "0"},
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.bytes); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestFormatReceived(t *testing.T) {
	ts := time.Date(2026, time.January, 1, 9, 5, 0, 0, time.Local)
	if got, want := formatReceived(ts), "Thursday, January 1, 2026 at 9:05 AM"; got != want {
		t.Errorf("formatReceived() = %q, want %q", got, want)
	}
}

func TestFormatListDate(t *testing.T) {
	now := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.Local)
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"today", time.Date(2026, time.March, 10, 8, 30, 0, 0, time.Local), "08:30"},
		{"this year", time.Date(2026, time.February, 3, 8, 30, 0, 0, time.Local), "Feb 03"},
		{"last year", time.Date(2025, time.December, 31, 23, 0, 0, 0, time.Local), "2025-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatListDate(tt.t, now); got != tt.want {
				t.Errorf("formatListDate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer subject", 10, "a longe..."},
		{"abcdef", 3, "abc"},
		{"line\nbreak\ttab", 20, "line break tab"},
		{"日本語の件名です", 9, "日本語..."},
	}
	for _, tt := range tests {
		if got := truncateRunes(tt.in, tt.width); got != tt.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 5); got != "ab   " {
		t.Errorf("padRight() = %q", got)
	}
	if got := padRight("abcdef", 3); got != "abc" {
		t.Errorf("padRight() = %q, want truncation", got)
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "hello world", 20, []string{"hello world"}},
		{"breaks at space", "hello there world", 12, []string{"hello there", "world"}},
		{"hard break", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"keeps blank lines", "a\r\n\r\nb", 10, []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, wrapText(tt.text, tt.width)); diff != "" {
				t.Errorf("wrapText() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWrapTextRespectsWidth(t *testing.T) {
	text := strings.Repeat("word ", 100)
	for _, line := range wrapText(text, 17) {
		if len(line) > 17 {
			t.Errorf("line %q longer than 17", line)
		}
	}
}
