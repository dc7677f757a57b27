package render

import "strings"

// FFmpeg filter graphs have two quoting layers: the graph parser splits on
// unescaped colons, commas, semicolons, and brackets, and the option value
// parser handles quotes and backslashes. Paths handed to filters such as
// subtitles= must survive both, so every call site goes through this module
// instead of inlining replace chains.

var filterPathReplacer = strings.NewReplacer(
	`\`, `\\\\`,
	`'`, `'\\\''`,
	`:`, `\\:`,
)

// EscapeFilterPath escapes a filesystem path for use as a filter option
// value inside a -filter_complex or -vf expression, wrapping it in single
// quotes so the graph parser treats it as one token.
func EscapeFilterPath(path string) string {
	return "'" + filterPathReplacer.Replace(path) + "'"
}

// ConcatListEntry renders one line of an ffmpeg concat demuxer list file.
// The demuxer's own quoting rule applies: single quotes around the path,
// with embedded single quotes closed, escaped, and reopened.
func ConcatListEntry(path string) string {
	escaped := strings.ReplaceAll(path, `'`, `'\''`)
	return "file '" + escaped + "'"
}
