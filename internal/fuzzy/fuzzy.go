// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fuzzy provides the optional string-similarity collaborator used
// when no search index can score a query.
package fuzzy

import (
	"github.com/agnivade/levenshtein"
)

// Matcher scores how closely two strings match. Ratio returns a value in
// [0, 1] where 1 means a perfect match.
type Matcher interface {
	Ratio(a, b string) float64
}

// PartialRatio matches the shorter string against every equally long
// window of the longer one and keeps the best normalised Levenshtein
// similarity. A short query therefore scores 1 when it appears verbatim
// anywhere in a long snippet.
type PartialRatio struct{}

// New returns the default matcher.
func New() *PartialRatio {
	return &PartialRatio{}
}

// Ratio implements Matcher.
func (PartialRatio) Ratio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}

	needle := string(short)
	n := len(short)
	best := 0.0
	for i := 0; i+n <= len(long); i++ {
		d := levenshtein.ComputeDistance(needle, string(long[i:i+n]))
		score := 1 - float64(d)/float64(n)
		if score > best {
			best = score
			if best == 1 {
				break
			}
		}
	}
	return best
}
