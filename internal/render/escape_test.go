package render

import "testing"

func TestEscapeFilterPath(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "/tmp/subs.ass", `'/tmp/subs.ass'`},
		{"colon", "C:/subs.ass", `'C\\:/subs.ass'`},
		{"backslash", `C:\subs.ass`, `'C\\:\\\\subs.ass'`},
		{"single quote", "/tmp/it's.ass", `'/tmp/it'\\\''s.ass'`},
		{"space", "/tmp/my subs.ass", `'/tmp/my subs.ass'`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EscapeFilterPath(tc.input); got != tc.want {
				t.Fatalf("EscapeFilterPath(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestConcatListEntry(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "/tmp/a.mp4", "file '/tmp/a.mp4'"},
		{"space", "/tmp/scene one.mp4", "file '/tmp/scene one.mp4'"},
		{"single quote", "/tmp/it's.mp4", `file '/tmp/it'\''s.mp4'`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ConcatListEntry(tc.input); got != tc.want {
				t.Fatalf("ConcatListEntry(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
