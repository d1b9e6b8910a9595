// Package normalize converts locale-specific monetary and date strings from
// bank statement exports into canonical forms.
package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var currencySymbols = regexp.MustCompile(`[€$£¥]`)

// ParseAmount parses a monetary string such as "1.234,56 €" or "-24,15 €".
// When the cleaned string contains a comma it is read as continental European
// notation (dot = thousands, comma = decimal); otherwise it is parsed as a
// plain decimal literal. The second return value is false when the input is
// empty or not numeric — callers decide the default, never this function.
func ParseAmount(s string) (decimal.Decimal, bool) {
	clean := currencySymbols.ReplaceAllString(s, "")
	clean = strings.Join(strings.Fields(clean), "")
	if clean == "" {
		return decimal.Decimal{}, false
	}

	if strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
