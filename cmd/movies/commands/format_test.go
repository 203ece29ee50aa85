package commands

import "testing"

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-45000, "-45,000"},
	}

	for _, tt := range tests {
		if got := formatNumber(tt.in); got != tt.want {
			t.Errorf("formatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatRow(t *testing.T) {
	got := formatRow([]string{"Le Parrain", "1972"}, []int{6, 4})
	if want := "Le Pa…  1972"; got != want {
		t.Errorf("formatRow() = %q, want %q", got, want)
	}

	got = formatRow([]string{"a", "b"}, []int{3, 3})
	if want := "a    b"; got != want {
		t.Errorf("formatRow() = %q, want %q", got, want)
	}
}

func TestFormatRuntime(t *testing.T) {
	if got := formatRuntime(0); got != "-" {
		t.Errorf("formatRuntime(0) = %q", got)
	}
	if got := formatRuntime(175); got != "175 min" {
		t.Errorf("formatRuntime(175) = %q", got)
	}
}
