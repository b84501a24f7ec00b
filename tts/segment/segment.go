package segment

import (
	"strings"
	"time"
)

// Unit is one independently-synthesized piece of a request: a text line
// or an SSML sentence, with its ordinal position and pause directives.
type Unit struct {
	Index       int
	Text        string
	Voice       string // SSML <voice name> override, empty for request default
	Lang        string // SSML language override, empty for request default
	PauseBefore time.Duration
	PauseAfter  time.Duration
}

// Lines splits plain text on line boundaries, discarding blank lines.
// Each surviving line becomes one unit bound to the request voice.
func Lines(text string) []Unit {
	var units []Unit
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		units = append(units, Unit{Index: len(units), Text: line})
	}
	return units
}
