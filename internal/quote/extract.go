// Package quote turns plain text extracted from a vendor quote document
// into candidate product lines. The line pattern and its name-cleanup steps
// are one documented contract: a structured-extraction replacement only has
// to reproduce Extract's behavior to be a drop-in.
package quote

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNoProducts is returned when no line of the document matches the
// expected quote layout. It is recoverable: the caller surfaces it to the
// user, who has to fix the source document.
var ErrNoProducts = errors.New("no valid products found in the document")

// Candidate is a product line recognized in the document text.
type Candidate struct {
	Name      string
	BaseValue float64
}

// lineExpr recognizes one quote line: an optional item number, the product
// description, zero or more superseded prices, the charged amount, and the
// zero-value tax annotation that closes every product row in this layout.
var lineExpr = regexp.MustCompile(`^(?:\d+\s+)?(.*?)\s+(?:-?USD\s*[\d,]+\.\d{2}\s+)*(USD\s*[\d,]+\.\d{2})\s+USD\s*0\.00\s*\(0\.0%\s*Tax\)`)

const annualMarker = "ANNUAL"

// Extract scans text line by line and returns the candidate products in
// document order. Duplicates are kept. ErrNoProducts is returned when no
// line matches.
func Extract(text string) ([]Candidate, error) {
	var candidates []Candidate
	for _, line := range strings.Split(text, "\n") {
		match := lineExpr.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		name := cleanName(match[1])
		value, ok := parseAmount(match[2])
		if name == "" || !ok {
			continue
		}

		candidates = append(candidates, Candidate{Name: name, BaseValue: value})
	}

	if len(candidates) == 0 {
		return nil, ErrNoProducts
	}

	return candidates, nil
}

// cleanName normalizes a raw description: cut any "updated from ..."
// suffix, keep at most the first four tokens, drop the ANNUAL marker, and
// collapse whitespace.
func cleanName(raw string) string {
	raw, _, _ = strings.Cut(raw, " updated from ")

	tokens := strings.Fields(raw)
	if len(tokens) > 4 {
		tokens = tokens[:4]
	}

	kept := tokens[:0]
	for _, token := range tokens {
		if strings.EqualFold(token, annualMarker) {
			continue
		}
		kept = append(kept, token)
	}

	return strings.Join(kept, " ")
}

// parseAmount turns a currency-tagged amount like "USD 1,234.56" into a
// float, rejecting anything that does not parse as a decimal number.
func parseAmount(raw string) (float64, bool) {
	raw = strings.ReplaceAll(raw, "USD", "")
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.TrimSpace(raw)

	value, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, false
	}

	return value.InexactFloat64(), true
}
