package reconcile

import "strings"

// confusion maps the characters the recognizer habitually substitutes for
// digits and separators in handwriting.
var confusion = map[rune]rune{
	'O': '0',
	'o': '0',
	'l': '1',
	'I': '1',
	'|': '1',
	',': '.',
}

// CleanNumeric normalizes a raw recognition token into a numeric literal:
// confusable characters become their digit counterparts, everything that is
// not a digit, the first decimal point, or a leading minus is dropped, and
// the result is reshaped into conventional form (no leading zeros before a
// digit, no trailing or bare leading dot).
func CleanNumeric(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	seenDot := false
	for i, r := range raw {
		if mapped, ok := confusion[r]; ok {
			r = mapped
		}
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenDot:
			seenDot = true
			b.WriteRune(r)
		case r == '-' && i == 0:
			b.WriteRune(r)
		}
	}

	s := b.String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	for len(s) > 1 && s[0] == '0' && s[1] != '.' {
		s = s[1:]
	}
	s = strings.TrimSuffix(s, ".")
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}

	if s == "" {
		return ""
	}
	if neg {
		return "-" + s
	}
	return s
}
