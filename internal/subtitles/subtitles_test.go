package subtitles

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelforge/internal/services"
	"reelforge/internal/timestamps"
)

func TestBuildEventsSingleWord(t *testing.T) {
	words := []timestamps.Word{
		{Word: "The", Start: 0.0, End: 0.35},
		{Word: "HEIST!", Start: 0.35, End: 0.80},
		{Word: "begins,", Start: 0.80, End: 0.84},
	}

	events, err := BuildEvents(words, 1)
	if err != nil {
		t.Fatalf("BuildEvents: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	if events[0].Text != "the" {
		t.Errorf("text = %q, want lowercased %q", events[0].Text, "the")
	}
	if events[1].Text != "heist" {
		t.Errorf("text = %q, want punctuation stripped %q", events[1].Text, "heist")
	}
	// 40 ms word gets stretched to the display floor.
	if got := events[2].EndMS - events[2].StartMS; got != MinEventDurationMS {
		t.Errorf("short word duration = %dms, want %dms floor", got, MinEventDurationMS)
	}
	for _, event := range events {
		if event.EndMS-event.StartMS < MinEventDurationMS {
			t.Errorf("event %q below duration floor", event.Text)
		}
	}
}

func TestBuildEventsGroupsWords(t *testing.T) {
	words := []timestamps.Word{
		{Word: "one", Start: 0.0, End: 0.4},
		{Word: "two", Start: 0.4, End: 0.8},
		{Word: "three", Start: 0.8, End: 1.2},
	}

	events, err := BuildEvents(words, 2)
	if err != nil {
		t.Fatalf("BuildEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Text != "one two" {
		t.Errorf("grouped text = %q, want %q", events[0].Text, "one two")
	}
	if events[0].StartMS != 0 || events[0].EndMS != 800 {
		t.Errorf("group timing = [%d,%d], want [0,800]", events[0].StartMS, events[0].EndMS)
	}
	if events[1].Text != "three" {
		t.Errorf("trailing group = %q, want %q", events[1].Text, "three")
	}
}

func TestBuildEventsDropsEmptyCleanedWords(t *testing.T) {
	words := []timestamps.Word{
		{Word: "...", Start: 0.0, End: 0.2},
		{Word: "fine", Start: 0.2, End: 0.6},
	}

	events, err := BuildEvents(words, 1)
	if err != nil {
		t.Fatalf("BuildEvents: %v", err)
	}
	if len(events) != 1 || events[0].Text != "fine" {
		t.Errorf("events = %+v, want single %q event", events, "fine")
	}
}

func TestBuildEventsEmptyInput(t *testing.T) {
	_, err := BuildEvents(nil, 1)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("empty input should fail validation, got %v", err)
	}
}

func TestWriteDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captions.ass")
	events := []Event{
		{StartMS: 0, EndMS: 450, Text: "the"},
		{StartMS: 450, EndMS: 900, Text: `odd {\k} \chars`},
		{StartMS: 3_725_430, EndMS: 3_725_930, Text: "late"},
	}

	if err := WriteDocument(path, events, 1080, 1920); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	doc := string(data)

	for _, want := range []string{
		"PlayResX: 1080",
		"PlayResY: 1920",
		"Style: Narration,",
		`{\pos(540,960)}the`,
		"Dialogue: 0,0:00:00.00,0:00:00.45,Narration",
		"Dialogue: 0,1:02:05.43,1:02:05.93,Narration",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}
	if strings.Count(doc, "Style: ") != 1 {
		t.Errorf("all events must share a single style:\n%s", doc)
	}
	if strings.Contains(doc, `{\k}`) {
		t.Errorf("markup braces not sanitized:\n%s", doc)
	}
}

func TestWriteDocumentEmpty(t *testing.T) {
	err := WriteDocument(filepath.Join(t.TempDir(), "x.ass"), nil, 1080, 1920)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("empty events should fail validation, got %v", err)
	}
}
