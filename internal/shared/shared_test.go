package shared

import (
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	first := GenerateID()
	second := GenerateID()

	if first == "" || second == "" {
		t.Fatal("expected non-empty ids")
	}
	if first == second {
		t.Error("expected unique ids")
	}
	if len(strings.Split(first, "-")) != 5 {
		t.Errorf("expected uuid shape, got %q", first)
	}
}

func TestTruncate(t *testing.T) {
	tc := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{
			name: "short strings pass through",
			in:   "ok",
			n:    10,
			want: "ok",
		},
		{
			name: "exact length passes through",
			in:   "exact",
			n:    5,
			want: "exact",
		},
		{
			name: "long strings are cut with ellipsis",
			in:   "a longer diagnostic body",
			n:    8,
			want: "a longer...",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.n)
			if got != tt.want {
				t.Errorf("Truncate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewFileLogger(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewFileLogger(dir + "/sub/test.log")
	if err != nil {
		t.Fatalf("expected file logger, got %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
}
