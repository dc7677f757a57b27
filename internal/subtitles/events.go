package subtitles

import (
	"strings"

	"reelforge/internal/services"
	"reelforge/internal/textutil"
	"reelforge/internal/timestamps"
)

// MinEventDurationMS is the display floor for a caption event. Words ASR
// clocks at a few tens of milliseconds would otherwise flash unreadably.
const MinEventDurationMS = 100

// Event is one caption: global timing in milliseconds and cleaned text.
// All events share the single style the document writer emits.
type Event struct {
	StartMS int64
	EndMS   int64
	Text    string
}

// BuildEvents converts the globally-timed word list into caption events,
// grouping wordsPerEvent words per caption. Word text is lowercased and
// stripped of punctuation; words that clean to nothing are dropped. An
// empty input word list is an error: the caller caption-gates on it.
func BuildEvents(words []timestamps.Word, wordsPerEvent int) ([]Event, error) {
	if len(words) == 0 {
		return nil, services.Wrap(services.ErrValidation, "subtitles", "build events", "no words to caption", nil)
	}
	if wordsPerEvent < 1 {
		wordsPerEvent = 1
	}

	events := make([]Event, 0, (len(words)+wordsPerEvent-1)/wordsPerEvent)
	for i := 0; i < len(words); i += wordsPerEvent {
		group := words[i:min(i+wordsPerEvent, len(words))]

		parts := make([]string, 0, len(group))
		for _, word := range group {
			if cleaned := textutil.CleanWord(word.Word); cleaned != "" {
				parts = append(parts, cleaned)
			}
		}
		if len(parts) == 0 {
			continue
		}

		start := int64(group[0].Start * 1000)
		end := int64(group[len(group)-1].End * 1000)
		if end-start < MinEventDurationMS {
			end = start + MinEventDurationMS
		}
		events = append(events, Event{StartMS: start, EndMS: end, Text: strings.Join(parts, " ")})
	}
	return events, nil
}
