package content

import "strings"

// Segment is a piece of text, either plain or TeX math.
type Segment struct {
	Text    string
	Math    bool
	Display bool
}

type delimiter struct {
	open, close string
	display     bool
}

// Longer delimiters first so "$$" is never read as two inline delimiters.
var delimiters = []delimiter{
	{open: "$$", close: "$$", display: true},
	{open: "$", close: "$", display: false},
}

// SplitMath splits text at math delimiters. An opening delimiter without a
// matching close is kept as plain text, as is an escaped "\$".
func SplitMath(text string) []Segment {
	var segments []Segment
	var plain strings.Builder

	flush := func() {
		if plain.Len() > 0 {
			segments = append(segments, Segment{Text: plain.String()})
			plain.Reset()
		}
	}

	for i := 0; i < len(text); {
		if text[i] == '\\' && i+1 < len(text) && text[i+1] == '$' {
			plain.WriteString(text[i : i+2])
			i += 2
			continue
		}
		if text[i] != '$' {
			plain.WriteByte(text[i])
			i++
			continue
		}

		matched := false
		for _, d := range delimiters {
			if !strings.HasPrefix(text[i:], d.open) {
				continue
			}
			start := i + len(d.open)
			end := findClose(text, start, d.close)
			if end < 0 {
				continue
			}
			tex := strings.TrimSpace(text[start:end])
			if tex == "" {
				continue
			}
			flush()
			segments = append(segments, Segment{Text: tex, Math: true, Display: d.display})
			i = end + len(d.close)
			matched = true
			break
		}
		if !matched {
			plain.WriteByte(text[i])
			i++
		}
	}
	flush()

	if len(segments) == 0 {
		segments = append(segments, Segment{Text: text})
	}
	return segments
}

func findClose(text string, from int, closing string) int {
	for j := from; j < len(text); j++ {
		if text[j] == '\\' {
			j++
			continue
		}
		if strings.HasPrefix(text[j:], closing) {
			return j
		}
	}
	return -1
}
