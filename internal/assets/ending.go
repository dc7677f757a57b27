package assets

import (
	"fmt"
	"math/rand"
	"strings"
)

// Reveal lines for the synthetic poster scene. Each names the movie and
// its release year outright; the rest of the script never does.
var endingTemplates = []string{
	"And that... was %[1]s. Released in %[2]s.",
	"This was the story of %[1]s, from %[2]s.",
	"%[1]s. A %[2]s film that left its mark.",
	"That's %[1]s for you. Out since %[2]s.",
	"The movie? %[1]s. The year? %[2]s.",
}

// EndingNarration picks a reveal line for the ending scene.
func EndingNarration(title, year string) string {
	if strings.TrimSpace(year) == "" {
		year = "an unforgettable year"
	}
	template := endingTemplates[rand.Intn(len(endingTemplates))]
	return fmt.Sprintf(template, title, year)
}
