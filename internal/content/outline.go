package content

import (
	"strings"
	"unicode"
)

// WordsPerMinute is the reading speed behind Outline.ReadingMinutes.
const WordsPerMinute = 200

// Heading is one "#"-style heading line.
type Heading struct {
	Level  int    `json:"level"`
	Text   string `json:"text"`
	Anchor string `json:"anchor"`
}

// Outline is the table of contents and size of a post body.
type Outline struct {
	Headings       []Heading `json:"headings"`
	Words          int       `json:"words"`
	ReadingMinutes int       `json:"readingMinutes"`
}

// OutlineOf scans body line by line. Lines starting with one to six '#'
// followed by a space are headings; fenced code blocks are skipped for
// headings but still count towards the word total. No markup is rendered.
func OutlineOf(body string) Outline {
	var o Outline
	inFence := false
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		o.Words += len(strings.Fields(trimmed))
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if h, ok := parseHeading(trimmed); ok {
			o.Headings = append(o.Headings, h)
		}
	}
	if o.Words > 0 {
		o.ReadingMinutes = (o.Words + WordsPerMinute - 1) / WordsPerMinute
	}
	return o
}

func parseHeading(line string) (Heading, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level >= len(line) || line[level] != ' ' {
		return Heading{}, false
	}
	text := strings.TrimSpace(line[level:])
	// Optional closing sequence: "## Title ##".
	if stripped := strings.TrimRight(text, "#"); stripped != text && (stripped == "" || strings.HasSuffix(stripped, " ")) {
		text = strings.TrimSpace(stripped)
	}
	if text == "" {
		return Heading{}, false
	}
	return Heading{Level: level, Text: text, Anchor: anchor(text)}, true
}

// anchor lower-cases text and collapses every run of non-alphanumerics
// into a single '-'.
func anchor(text string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
