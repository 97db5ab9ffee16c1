// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package concepts derives short topical tags from free text.
//
// Tags come from two sources: mixed-case proper nouns ("Terraform",
// "GraphQL") and a fixed vocabulary of domain keywords matched
// case-insensitively. The output is deterministic so search and graph
// behaviour can be asserted in tests.
package concepts

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxTags caps the number of tags returned by Extract.
const MaxTags = 12

var tokenPattern = regexp.MustCompile(`\b[A-Za-z][A-Za-z0-9\-]{2,}\b`)

// letterRun matches the cased segments of a token. Digits and hyphens
// separate them, so each run is title-cased on its own.
var letterRun = regexp.MustCompile(`[A-Za-z]+`)

// vocabulary holds the lowercased domain keywords that always become tags.
var vocabulary = map[string]struct{}{
	"blockchain":    {},
	"machine":       {},
	"learning":      {},
	"web3":          {},
	"nft":           {},
	"token":         {},
	"smart":         {},
	"contract":      {},
	"react":         {},
	"nextjs":        {},
	"fastapi":       {},
	"docker":        {},
	"kubernetes":    {},
	"microservices": {},
	"architecture":  {},
	"postgres":      {},
	"redis":         {},
}

// Extract returns at most MaxTags distinct, title-cased, alphabetically
// sorted concept tags for text. The result is never nil.
func Extract(text string) []string {
	title := cases.Title(language.Und)
	seen := make(map[string]struct{})

	for _, w := range tokenPattern.FindAllString(text, -1) {
		if isProperNoun(w) {
			seen[titleToken(title, w)] = struct{}{}
			continue
		}
		if _, ok := vocabulary[strings.ToLower(w)]; ok {
			seen[titleToken(title, w)] = struct{}{}
		}
	}

	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	if len(tags) > MaxTags {
		tags = tags[:MaxTags]
	}
	return tags
}

// titleToken upper-cases the first letter after every non-letter and
// lower-cases the rest, so "ec2INSTANCE" becomes "Ec2Instance".
func titleToken(title cases.Caser, w string) string {
	return letterRun.ReplaceAllStringFunc(w, title.String)
}

// isProperNoun reports whether w starts uppercase, mixes case, and has a
// length strictly between 3 and 28.
func isProperNoun(w string) bool {
	if len(w) <= 3 || len(w) >= 28 {
		return false
	}
	if !unicode.IsUpper(rune(w[0])) {
		return false
	}
	return w != strings.ToUpper(w) && w != strings.ToLower(w)
}
