// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph derives concept-overlap relationships between documents
// and turns node degree into a quality score.
package graph

import (
	"math"

	"github.com/pdiddy/kgraph/pkg/types"
)

const (
	// BaseQuality is the score of a document with no relationships.
	BaseQuality = 0.7
	// DegreeWeight is added per relationship, up to DegreeCap.
	DegreeWeight = 0.05
	// DegreeCap bounds the degree that contributes to quality.
	DegreeCap = 6
)

// Relationships returns one shares_concepts edge for every unordered pair
// of documents carrying the same tag. Tags are visited in the order they
// first appear; pairs within a tag follow document order.
func Relationships(docs []types.Document) []types.Relationship {
	var order []string
	members := make(map[string][]int)
	for i, d := range docs {
		for _, tag := range d.ConceptTags {
			if _, ok := members[tag]; !ok {
				order = append(order, tag)
			}
			members[tag] = append(members[tag], i)
		}
	}

	var rels []types.Relationship
	for _, tag := range order {
		idx := members[tag]
		for a := 0; a < len(idx); a++ {
			for b := a + 1; b < len(idx); b++ {
				rels = append(rels, types.Relationship{
					SourceID: docs[idx[a]].SourceID,
					TargetID: docs[idx[b]].SourceID,
					Type:     types.RelationSharesConcepts,
					Concept:  tag,
				})
			}
		}
	}
	return rels
}

// Degrees counts how many relationships touch each source ID.
func Degrees(rels []types.Relationship) map[string]int {
	deg := make(map[string]int)
	for _, r := range rels {
		deg[r.SourceID]++
		deg[r.TargetID]++
	}
	return deg
}

// QualityScore maps a degree to a score in [BaseQuality, 1].
func QualityScore(degree int) float64 {
	if degree < 0 {
		degree = 0
	}
	if degree > DegreeCap {
		degree = DegreeCap
	}
	return math.Min(1.0, BaseQuality+DegreeWeight*float64(degree))
}

// Concepts returns the number of distinct tags across docs.
func Concepts(docs []types.Document) int {
	seen := make(map[string]struct{})
	for _, d := range docs {
		for _, tag := range d.ConceptTags {
			seen[tag] = struct{}{}
		}
	}
	return len(seen)
}
