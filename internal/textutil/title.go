package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayTitle normalizes a movie title for user-facing output such as the
// ending reveal line.
func DisplayTitle(title string) string {
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return ""
	}
	if title == strings.ToLower(title) || title == strings.ToUpper(title) {
		return cases.Title(language.Und).String(title)
	}
	return title
}
