// Package parser turns pasted game results ("Alice: +50") into profit
// records, previews them as buy-ins and cash-outs, and validates the set
// before a game is created from it.
package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ParsedEntry is one player's net result taken from a line of input.
// Profit is invalid (Valid == false) only for entries that came from a
// client and carried a non-numeric amount; ParseText never emits those.
type ParsedEntry struct {
	Name   string              `json:"name"`
	Profit decimal.NullDecimal `json:"profit"`
}

// NewEntry builds a valid entry.
func NewEntry(name string, profit decimal.Decimal) ParsedEntry {
	return ParsedEntry{Name: name, Profit: decimal.NewNullDecimal(profit)}
}

// linePattern is one strategy in the parse cascade. The regexp must expose
// the name as group 1 and the amount as group 2.
type linePattern struct {
	name string
	re   *regexp.Regexp
}

const amount = `\d+(?:\.\d+)?|\.\d+`

// linePatterns are tried in order; the first match wins.
var linePatterns = []linePattern{
	{name: "colon-signed", re: regexp.MustCompile(`^(.+?)\s*:\s*([+-]\s*(?:` + amount + `))$`)},
	{name: "space-signed", re: regexp.MustCompile(`^([^+-]+?)\s+([+-]\s*(?:` + amount + `))$`)},
	{name: "colon-unsigned", re: regexp.MustCompile(`^(.+?)\s*:\s*(` + amount + `)$`)},
	{name: "space-unsigned", re: regexp.MustCompile(`^(.+?)\s+(` + amount + `)$`)},
}

// extract applies the pattern to a trimmed line.
func (p linePattern) extract(line string) (ParsedEntry, bool) {
	m := p.re.FindStringSubmatch(line)
	if m == nil {
		return ParsedEntry{}, false
	}

	name := strings.TrimSpace(m[1])
	raw := strings.TrimPrefix(strings.Join(strings.Fields(m[2]), ""), "+")

	profit, err := decimal.NewFromString(raw)
	if err != nil {
		return ParsedEntry{}, false
	}
	return NewEntry(name, profit), true
}

// ParseText splits text into lines and parses every non-blank one.
// Lines that match no pattern are dropped without error.
func ParseText(text string) []ParsedEntry {
	entries := []ParsedEntry{}
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if entry, ok := parseLine(line); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

func parseLine(line string) (ParsedEntry, bool) {
	for _, p := range linePatterns {
		if entry, ok := p.extract(line); ok {
			return entry, true
		}
	}
	return ParsedEntry{}, false
}

// FormatLine renders an entry back into the "Name: ±Amount" form that
// ParseText accepts.
func FormatLine(e ParsedEntry) string {
	p := e.Profit.Decimal
	if p.IsNegative() {
		return e.Name + ": " + p.String()
	}
	return e.Name + ": +" + p.String()
}
