package utils

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Hello World", "hello-world"},
		{"punctuation stripped", "Hello, World!", "hello-world"},
		{"hangul preserved", "Hello, World! 안녕", "hello-world-안녕"},
		{"mixed hangul", "개발 노트 2024", "개발-노트-2024"},
		{"whitespace runs collapse", "a   b\t\tc", "a-b-c"},
		{"hyphen runs collapse", "a -- b --- c", "a-b-c"},
		{"leading trailing hyphens trimmed", "--hello--", "hello"},
		{"uppercase lowered", "MiXeD CaSe", "mixed-case"},
		{"all stripped", "!!!???", ""},
		{"empty", "", ""},
		{"only whitespace", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugifyAlphabet(t *testing.T) {
	got := Slugify("Hello, World! 안녕")
	if got == "" {
		t.Fatal("expected non-empty slug")
	}
	for _, r := range got {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r >= '가' && r <= '힣':
		case r == '-':
		default:
			t.Errorf("slug %q contains disallowed rune %q", got, r)
		}
	}
	if got[0] == '-' || got[len(got)-1] == '-' {
		t.Errorf("slug %q has leading or trailing hyphen", got)
	}
}
