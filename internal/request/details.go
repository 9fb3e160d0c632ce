package request

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Details is a description split into labelled fields and free-text notes.
//
// Posters write descriptions such as
//
//	Mother recovering from surgery | Language: Thai
//	Meals: lunch
//	Meals: dinner
//
// which yield the summary "Mother recovering from surgery", the fields
// language=Thai and meals="lunch, dinner", and one note.
type Details struct {
	Summary string            `json:"summary"`
	Fields  map[string]string `json:"fields"`
	Notes   []string          `json:"notes"`
}

const (
	maxKeyLen   = 32
	maxKeyWords = 3
)

// ParseDescription splits s on newlines and pipes. Blank segments are
// dropped, "key: value" segments become fields and the rest become notes.
func ParseDescription(s string) Details {
	d := Details{Fields: map[string]string{}, Notes: []string{}}

	segments := strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '|' })
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if key, value, ok := splitField(seg); ok {
			if prev, seen := d.Fields[key]; seen {
				d.Fields[key] = prev + ", " + value
			} else {
				d.Fields[key] = value
			}
			continue
		}
		d.Notes = append(d.Notes, seg)
	}

	if len(d.Notes) > 0 {
		d.Summary = d.Notes[0]
	}
	return d
}

// splitField accepts short labels only, so a sentence that happens to
// contain a colon ("arrive by 10:30") stays a note.
func splitField(seg string) (string, string, bool) {
	i := strings.IndexByte(seg, ':')
	if i <= 0 {
		return "", "", false
	}
	if i+1 < len(seg) && isDigit(seg[i-1]) && isDigit(seg[i+1]) {
		return "", "", false
	}
	label := strings.TrimSpace(seg[:i])
	value := strings.TrimSpace(seg[i+1:])
	if label == "" || value == "" || utf8.RuneCountInString(label) > maxKeyLen {
		return "", "", false
	}
	words := strings.Fields(strings.ToLower(label))
	if len(words) > maxKeyWords {
		return "", "", false
	}
	for _, w := range words {
		for _, r := range w {
			if !isKeyRune(r) {
				return "", "", false
			}
		}
	}
	return strings.Join(words, "_"), value, true
}

// isKeyRune allows letters of any script, so Thai labels work too.
func isKeyRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_' || r == '-'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
