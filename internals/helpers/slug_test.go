package helper

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"VII A", 0, "vii-a"},
		{"  Kelas  X -- IPA 1 ", 0, "kelas-x-ipa-1"},
		{"Bahasa Indonésia", 0, "bahasa-indonesia"},
		{"!!!", 0, "item"},
		{"", 0, "item"},
		{"matematika wajib", 11, "matematika"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in, tt.max); got != tt.want {
			t.Errorf("Slugify(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestWithSlugSuffix(t *testing.T) {
	tests := []struct {
		base, suffix string
		max          int
		want         string
	}{
		{"vii-a", "-2", 100, "vii-a-2"},
		{"matematika-wajib", "-3", 13, "matematika-3"},
		{"abc", "-12345", 4, "x-12345"},
	}
	for _, tt := range tests {
		if got := WithSlugSuffix(tt.base, tt.suffix, tt.max); got != tt.want {
			t.Errorf("WithSlugSuffix(%q, %q, %d) = %q, want %q", tt.base, tt.suffix, tt.max, got, tt.want)
		}
	}
}
