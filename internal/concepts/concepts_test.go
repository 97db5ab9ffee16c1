// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package concepts

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "proper nouns and vocabulary",
			text: "We deploy Kubernetes and docker next to PostgreSQL.",
			want: []string{"Docker", "Kubernetes", "Postgresql"},
		},
		{
			name: "fully uppercase tokens are not proper nouns",
			text: "The HTTP API exposes JSON over REST.",
			want: []string{},
		},
		{
			name: "uppercase vocabulary words still match",
			text: "An NFT marketplace on a BLOCKCHAIN.",
			want: []string{"Blockchain", "Nft"},
		},
		{
			name: "length bounds are exclusive",
			text: "Abc Abcd " + "A" + strings.Repeat("b", 26) + " A" + strings.Repeat("b", 27),
			want: []string{"A" + strings.Repeat("b", 26), "Abcd"},
		},
		{
			name: "duplicates collapse after title casing",
			text: "Redis redis REDIS ReDis",
			want: []string{"Redis"},
		},
		{
			name: "hyphenated tokens keep their segments",
			text: "Smart-Contract audits",
			want: []string{"Smart-Contract"},
		},
		{
			name: "letters after digits start a new segment",
			text: "Ec2Instance feeds an S3Bucket behind Web3Auth",
			want: []string{"Ec2Instance", "S3Bucket", "Web3Auth"},
		},
		{
			name: "vocabulary word with a digit",
			text: "WEB3 wallets",
			want: []string{"Web3"},
		},
		{
			name: "lowercase words outside the vocabulary are ignored",
			text: "plain lowercase prose without any names",
			want: []string{},
		},
		{
			name: "empty text",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTruncatesToMaxTags(t *testing.T) {
	var words []string
	for c := 'a'; c <= 'o'; c++ {
		words = append(words, fmt.Sprintf("Project%c", c+('A'-'a')))
	}
	got := Extract(strings.Join(words, " "))

	require.Len(t, got, MaxTags)
	assert.Equal(t, "Projecta", got[0])
	assert.Equal(t, "Projectl", got[MaxTags-1])
}

func TestExtractProperties(t *testing.T) {
	texts := []string{
		"Terraform modules provision Kubernetes clusters for the FastAPI service.",
		"React and Nextjs front a Postgres database; Redis caches sessions.",
		strings.Repeat("Zebra Yak Xenon Walrus Viper Urchin Tapir Sloth Raven Quail Puma Otter Newt Mole ", 3),
	}

	for _, text := range texts {
		first := Extract(text)
		second := Extract(text)
		assert.Equal(t, first, second, "Extract must be deterministic")
		assert.LessOrEqual(t, len(first), MaxTags)
		assert.True(t, sort.StringsAreSorted(first), "tags must be sorted: %v", first)

		seen := make(map[string]bool)
		for _, tag := range first {
			assert.False(t, seen[tag], "duplicate tag %q", tag)
			seen[tag] = true
			assert.Equal(t, strings.ToUpper(tag[:1]), tag[:1], "tag %q must be title-cased", tag)
		}
	}
}
