package types

import (
	"strings"
	"testing"
)

func TestTruncateTitle(t *testing.T) {
	long := strings.Repeat("a", 95)
	tests := []struct {
		name  string
		input string
		n     int
		want  string
	}{
		{"short", "Yoga for beginners", 90, "Yoga for beginners"},
		{"exact", strings.Repeat("b", 90), 90, strings.Repeat("b", 90)},
		{"long", long, 90, strings.Repeat("a", 90) + "..."},
		{"cyrillic", "Лечебные растения", 8, "Лечебные..."},
		{"no limit", "anything", 0, "anything"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateTitle(tt.input, tt.n); got != tt.want {
				t.Fatalf("TruncateTitle(%q, %d) = %q; want %q", tt.input, tt.n, got, tt.want)
			}
		})
	}
}

func TestGenerateIDStable(t *testing.T) {
	a := GenerateID("https://www.healthline.com/nutrition")
	b := GenerateID("https://www.healthline.com/nutrition")
	c := GenerateID("https://www.webmd.com/diet")
	if a != b {
		t.Fatalf("same input produced different IDs: %s vs %s", a, b)
	}
	if a == c {
		t.Fatalf("different inputs produced the same ID %s", a)
	}
	if len(a) != 16 {
		t.Fatalf("expected 16-char id, got %d", len(a))
	}
}
