package extract

import (
	"regexp"
	"strings"
)

// entryAnchorRe marks the start of a numbered party entry. A leading U
// puts the entry in the unknown-address cohort.
var entryAnchorRe = regexp.MustCompile(`(?m)^[ \t]*(U)?(\d+)\.[ \t]+`)

// Chunk is the raw text of one numbered entry.
type Chunk struct {
	Number  string
	Unknown bool
	Text    string
}

// Label returns the entry number as printed, including any U prefix.
func (c Chunk) Label() string {
	if c.Unknown {
		return "U" + c.Number
	}
	return c.Number
}

// Segment splits text into one chunk per numbered entry. Text before the
// first anchor is treated as a preamble and dropped.
func Segment(text string) []Chunk {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	locs := entryAnchorRe.FindAllStringSubmatchIndex(text, -1)
	chunks := make([]Chunk, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		c := Chunk{
			Number:  text[loc[4]:loc[5]],
			Unknown: loc[2] >= 0,
			Text:    strings.TrimSpace(text[loc[1]:end]),
		}
		chunks = append(chunks, c)
	}
	return chunks
}
