package subtitles

import (
	"fmt"
	"strings"

	"reelforge/internal/fileutil"
	"reelforge/internal/services"
)

const styleName = "Narration"

// WriteDocument serializes caption events into a self-contained ASS file at
// path. PlayRes matches the canonical frame so font metrics and the fixed
// center anchor survive any downstream scaling.
func WriteDocument(path string, events []Event, width, height int) error {
	if len(events) == 0 {
		return services.Wrap(services.ErrValidation, "subtitles", "write document", "no caption events", nil)
	}

	var b strings.Builder
	writeHeader(&b, width, height)

	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	// Every caption sits at the same fixed screen anchor.
	posTag := fmt.Sprintf(`{\pos(%d,%d)}`, width/2, height/2)
	for _, event := range events {
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,%s,,0,0,0,,%s%s\n",
			assTime(event.StartMS), assTime(event.EndMS), styleName, posTag, sanitizeText(event.Text))
	}

	if err := fileutil.WriteFileAtomic(path, []byte(b.String()), 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "subtitles", "write document", "write ass file", err)
	}
	return nil
}

func writeHeader(b *strings.Builder, width, height int) {
	fmt.Fprintf(b, "[Script Info]\nScriptType: v4.00+\nPlayResX: %d\nPlayResY: %d\nScaledBorderAndShadow: yes\n", width, height)
	b.WriteString("\n[V4+ Styles]\n")
	b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	// Slightly transparent white fill, heavy black outline, centered.
	b.WriteString("Style: " + styleName + ", Arial Black, 80, &H28FFFFFF, &H28FFFFFF, &H00000000, &H80000000, 1,0,0,0,100,100,0,0,1,4,2,5, 20,20,0,1\n")
}

// assTime renders milliseconds as the H:MM:SS.CS timestamp ASS expects.
func assTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	cs := ms / 10
	s := cs / 100
	cs -= s * 100
	m := s / 60
	s -= m * 60
	h := m / 60
	m -= h * 60
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

// sanitizeText neutralizes characters ASS treats as markup.
func sanitizeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}
