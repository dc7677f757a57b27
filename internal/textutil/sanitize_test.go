package textutil

import "testing"

func TestSanitizeJobName(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Inception", "Inception"},
		{"spaces", "The Dark Knight", "The_Dark_Knight"},
		{"punctuation", "WALL·E: the robot?", "WALLE_the_robot"},
		{"diacritics", "Amélie", "Amelie"},
		{"path separators", "a/b\\c", "abc"},
		{"empty", "   ", "unknown"},
		{"only symbols", "!!!", "unknown"},
		{"mixed", "Se7en (1995)", "Se7en_1995"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeJobName(tc.input); got != tc.want {
				t.Fatalf("SanitizeJobName(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestCleanWord(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{" Hello,", "hello"},
		{"WORLD!", "world"},
		{"(whisper)", "whisper"},
		{"don't", "don't"},
		{"...", ""},
	}
	for _, tc := range cases {
		if got := CleanWord(tc.input); got != tc.want {
			t.Fatalf("CleanWord(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestDisplayTitle(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"the godfather", "The Godfather"},
		{"INCEPTION", "Inception"},
		{"The  Dark   Knight", "The Dark Knight"},
		{"WALL-E", "Wall-E"},
		{"Blade Runner", "Blade Runner"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := DisplayTitle(tc.input); got != tc.want {
			t.Fatalf("DisplayTitle(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
