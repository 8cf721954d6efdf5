package core

// fuzzy.go ranks cell text against a search query.
//
// Ranking tiers, best first:
//
//	CaseSensitiveEqual > Equal > StartsWith > WordStartsWith > Contains >
//	Acronym > Matches > NoMatch
//
// Matches is a fractional tier: all query characters appear in order, scored
// by how tightly they cluster. A value passes when its rank reaches the
// threshold (Matches by default). Diacritics are folded before comparison so
// "cafe" matches "Café".

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Rank scores how well a value matches a query. Higher is better.
type Rank float64

const (
	RankNoMatch            Rank = 0
	RankMatches            Rank = 1
	RankAcronym            Rank = 2
	RankContains           Rank = 3
	RankWordStartsWith     Rank = 4
	RankStartsWith         Rank = 5
	RankEqual              Rank = 6
	RankCaseSensitiveEqual Rank = 7
)

// Ranking is the outcome of ranking one value.
type Ranking struct {
	Rank   Rank
	Passed bool
}

// RankItem ranks a cell value against query using the default threshold.
func RankItem(value any, query string) Ranking {
	return RankItemWithThreshold(value, query, RankMatches)
}

// RankItemWithThreshold ranks a cell value and marks it passed when the rank
// is at least threshold.
func RankItemWithThreshold(value any, query string, threshold Rank) Ranking {
	rank := matchRanking(FormatValue(value), query)
	return Ranking{Rank: rank, Passed: rank >= threshold}
}

// CompareRankings orders better rankings first: -1 when a ranks above b.
func CompareRankings(a, b Ranking) int {
	switch {
	case a.Rank == b.Rank:
		return 0
	case a.Rank > b.Rank:
		return -1
	default:
		return 1
	}
}

// FuzzyFilter is a FilterFunc that passes values ranking at least Matches
// against the filter text.
func FuzzyFilter(value any, filter any) bool {
	query, ok := filter.(string)
	if !ok || query == "" {
		return true
	}
	return RankItem(value, query).Passed
}

var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldDiacritics(s string) string {
	out, _, err := transform.String(diacriticFolder, s)
	if err != nil {
		return s
	}
	return out
}

func matchRanking(testString, query string) Rank {
	test := []rune(foldDiacritics(testString))
	q := []rune(foldDiacritics(query))

	if len(q) > len(test) {
		return RankNoMatch
	}
	if string(test) == string(q) {
		return RankCaseSensitiveEqual
	}

	lowerTest := strings.ToLower(string(test))
	lowerQuery := strings.ToLower(string(q))

	switch {
	case lowerTest == lowerQuery:
		return RankEqual
	case strings.HasPrefix(lowerTest, lowerQuery):
		return RankStartsWith
	case strings.Contains(lowerTest, " "+lowerQuery):
		return RankWordStartsWith
	case strings.Contains(lowerTest, lowerQuery):
		return RankContains
	case len(q) == 1:
		return RankNoMatch
	}

	if strings.Contains(acronym(lowerTest), lowerQuery) {
		return RankAcronym
	}
	return closenessRanking([]rune(lowerTest), []rune(lowerQuery))
}

// acronym returns the first letter of every word, splitting on spaces and dashes.
func acronym(s string) string {
	var b strings.Builder
	for _, word := range strings.Split(s, " ") {
		for _, part := range strings.Split(word, "-") {
			if part == "" {
				continue
			}
			r := []rune(part)
			b.WriteRune(r[0])
		}
	}
	return b.String()
}

// closenessRanking scores an in-order character match between Matches and
// Acronym; tighter spreads score higher.
func closenessRanking(test, query []rune) Rank {
	pos := 0
	matched := 0
	find := func(ch rune) int {
		for j := pos; j < len(test); j++ {
			if test[j] == ch {
				matched++
				return j + 1
			}
		}
		return -1
	}

	first := find(query[0])
	if first < 0 {
		return RankNoMatch
	}
	pos = first
	for i := 1; i < len(query); i++ {
		pos = find(query[i])
		if pos < 0 {
			return RankNoMatch
		}
	}

	spread := pos - first
	if spread < 1 {
		spread = 1
	}
	inOrder := float64(matched) / float64(len(query))
	return RankMatches + Rank(inOrder*(1/float64(spread)))
}
