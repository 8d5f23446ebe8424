// Package fuzzy reconciles free-text player names with a roster of known
// players using normalised Levenshtein similarity.
//
// Matching is per name: two parsed names may resolve to the same roster
// player. Callers that need one-to-one assignment must enforce it.
package fuzzy

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// MatchThreshold is the minimum similarity for an automatic match.
	MatchThreshold = 0.7
	// SuggestionThreshold is the similarity a candidate must exceed to be
	// offered to the user for an unmatched name.
	SuggestionThreshold = 0.3
	// MaxSuggestions caps the suggestions per unmatched name.
	MaxSuggestions = 3

	// scores are ratios of small integers; epsilon absorbs float rounding at
	// the thresholds so 7/10 counts as exactly 0.7
	epsilon = 1e-9
)

// RosterEntry is a known player. The matcher never modifies the roster.
type RosterEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Candidate is a roster entry scored against a name.
type Candidate struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
}

// Matched is a parsed name resolved to a roster player.
type Matched struct {
	ParsedName         string          `json:"parsedName"`
	ExistingPlayerID   string          `json:"existingPlayerId"`
	ExistingPlayerName string          `json:"existingPlayerName"`
	Similarity         float64         `json:"similarity"`
	Profit             decimal.Decimal `json:"profit"`
}

// Unmatched is a parsed name with no roster player above MatchThreshold.
type Unmatched struct {
	ParsedName  string          `json:"parsedName"`
	Profit      decimal.Decimal `json:"profit"`
	Suggestions []Candidate     `json:"suggestions"`
}

// Result partitions the input names.
type Result struct {
	Matched   []Matched   `json:"matched"`
	Unmatched []Unmatched `json:"unmatched"`
}

// Input is a name to match along with the profit it carries through.
type Input struct {
	Name   string
	Profit decimal.Decimal
}

func normalize(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// CalculateSimilarity returns 1 - distance/maxLen over the trimmed,
// lower-cased strings. Two empty strings are identical.
func CalculateSimilarity(a, b string) float64 {
	na, nb := normalize(a), normalize(b)
	if na == nb {
		return 1
	}

	maxLen := max(utf8.RuneCountInString(na), utf8.RuneCountInString(nb))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(Levenshtein(na, nb))/float64(maxLen)
}

// FindBestMatch scans the whole roster and returns the entry with the
// highest similarity at or above MatchThreshold. Ties keep the earliest
// entry. ok is false when nothing qualifies.
func FindBestMatch(name string, roster []RosterEntry) (best Candidate, ok bool) {
	for _, r := range roster {
		sim := CalculateSimilarity(name, r.Name)
		if sim+epsilon < MatchThreshold {
			continue
		}
		if !ok || sim > best.Similarity {
			best = Candidate{ID: r.ID, Name: r.Name, Similarity: sim}
			ok = true
		}
	}
	return best, ok
}

// Suggest ranks roster entries above SuggestionThreshold, highest first,
// and keeps at most MaxSuggestions. Equal scores keep roster order.
func Suggest(name string, roster []RosterEntry) []Candidate {
	out := []Candidate{}
	for _, r := range roster {
		if sim := CalculateSimilarity(name, r.Name); sim > SuggestionThreshold+epsilon {
			out = append(out, Candidate{ID: r.ID, Name: r.Name, Similarity: sim})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

// MatchPlayers resolves each input independently against the roster.
func MatchPlayers(inputs []Input, roster []RosterEntry) Result {
	res := Result{Matched: []Matched{}, Unmatched: []Unmatched{}}

	for _, in := range inputs {
		if best, ok := FindBestMatch(in.Name, roster); ok {
			res.Matched = append(res.Matched, Matched{
				ParsedName:         in.Name,
				ExistingPlayerID:   best.ID,
				ExistingPlayerName: best.Name,
				Similarity:         best.Similarity,
				Profit:             in.Profit,
			})
			continue
		}

		res.Unmatched = append(res.Unmatched, Unmatched{
			ParsedName:  in.Name,
			Profit:      in.Profit,
			Suggestions: Suggest(in.Name, roster),
		})
	}
	return res
}
