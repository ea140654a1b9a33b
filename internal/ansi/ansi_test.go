package ansi

import "testing"

func TestPaint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		s     string
		codes []string
		want  string
	}{
		{"no codes", "plain", nil, "plain"},
		{"one code", "ok", []string{Green}, Green + "ok" + Reset},
		{"stacked codes", "title", []string{Bold, Cyan}, Bold + Cyan + "title" + Reset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Paint(tt.s, tt.codes...); got != tt.want {
				t.Errorf("Paint(%q) = %q, want %q", tt.s, got, tt.want)
			}
		})
	}
}
