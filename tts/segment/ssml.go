package segment

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ssmlScope tracks the voice and language overrides of the enclosing
// elements while walking the document.
type ssmlScope struct {
	voice string
	lang  string
}

// SSML parses an SSML document into ordered units. Recognized elements:
// <speak>, <p>, <s>, <voice name=...>, <break time=...>, xml:lang
// attributes on any of them. Text outside explicit <s> elements is
// split into sentences. A <break> before a sentence's text accrues to
// its pre-pause; a <break> after accrues to the preceding sentence's
// post-pause.
func SSML(doc string) ([]Unit, error) {
	decoder := xml.NewDecoder(strings.NewReader(doc))
	decoder.Strict = false

	var units []Unit
	var stack []ssmlScope
	var text strings.Builder
	var pending time.Duration // pause waiting for the next unit
	inSentence := false       // inside an explicit <s> element

	current := func() ssmlScope {
		if len(stack) == 0 {
			return ssmlScope{}
		}
		return stack[len(stack)-1]
	}

	flush := func(split bool) {
		raw := strings.TrimSpace(text.String())
		text.Reset()
		if raw == "" {
			return
		}
		scope := current()
		parts := []string{raw}
		if split {
			parts = splitSentences(raw)
		}
		for _, part := range parts {
			units = append(units, Unit{
				Index:       len(units),
				Text:        part,
				Voice:       scope.voice,
				Lang:        scope.lang,
				PauseBefore: pending,
			})
			pending = 0
		}
	}

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			scope := current()
			if lang := attr(t, "lang"); lang != "" {
				scope.lang = lang
			}
			switch t.Name.Local {
			case "voice":
				flush(true)
				if name := attr(t, "name"); name != "" {
					scope.voice = name
				}
			case "s":
				flush(true)
				inSentence = true
			case "p":
				flush(true)
			case "break":
				d, err := parseBreak(attr(t, "time"))
				if err != nil {
					return nil, err
				}
				if strings.TrimSpace(text.String()) != "" {
					// Mid-sentence break: close the text so far and
					// attach the pause after it.
					flush(!inSentence)
					if len(units) > 0 {
						units[len(units)-1].PauseAfter += d
					}
				} else if len(units) > 0 && pending == 0 && text.Len() == 0 {
					units[len(units)-1].PauseAfter += d
				} else {
					pending += d
				}
			}
			stack = append(stack, scope)
		case xml.EndElement:
			switch t.Name.Local {
			case "s":
				flush(false)
				inSentence = false
			case "p", "voice", "speak":
				flush(true)
			case "break":
				// self-closing handled at start
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			text.WriteString(string(t))
		}
	}
	flush(true)

	return units, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// parseBreak reads an SSML break duration ("500ms", "1.5s").
func parseBreak(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	unit := time.Second
	num := s
	switch {
	case strings.HasSuffix(s, "ms"):
		unit = time.Millisecond
		num = strings.TrimSuffix(s, "ms")
	case strings.HasSuffix(s, "s"):
		num = strings.TrimSuffix(s, "s")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid break time %q: %w", s, err)
	}
	return time.Duration(v * float64(unit)), nil
}
