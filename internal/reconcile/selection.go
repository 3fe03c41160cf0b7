package reconcile

import "strings"

// Candidate is one binarization variant's reconciled value for a field.
type Candidate struct {
	Variant string
	Value   string
}

// comparisonKey scores a candidate value; higher wins. Keys are consulted in
// a fixed order and later keys only break ties left by earlier ones.
type comparisonKey struct {
	name  string
	score func(value string) int
}

var comparisonKeys = []comparisonKey{
	// More digits means more of the handwriting was resolved.
	{name: "digits", score: digitCount},
	// Readings carry fractional parts; a decimal point suggests the
	// separator was actually seen rather than lost.
	{name: "decimal", score: func(v string) int {
		if strings.Contains(v, ".") {
			return 1
		}
		return 0
	}},
	{name: "length", score: func(v string) int { return len(v) }},
}

func digitCount(v string) int {
	n := 0
	for _, r := range v {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// SelectValue picks the best candidate by running the comparison keys in
// order. A tie after every key falls to the candidate from the preferred
// variant, then to input order.
func SelectValue(candidates []Candidate, preferredVariant string) (Candidate, bool) {
	live := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Value != "" {
			live = append(live, c)
		}
	}
	if len(live) == 0 {
		return Candidate{}, false
	}

	for _, key := range comparisonKeys {
		if len(live) == 1 {
			break
		}
		best := key.score(live[0].Value)
		for _, c := range live[1:] {
			if s := key.score(c.Value); s > best {
				best = s
			}
		}
		next := live[:0]
		for _, c := range live {
			if key.score(c.Value) == best {
				next = append(next, c)
			}
		}
		live = next
	}

	for _, c := range live {
		if c.Variant == preferredVariant {
			return c, true
		}
	}
	return live[0], true
}
