// Package nlp converts informal Indonesian money talk into structured
// transaction fields: amounts, categories, merchants and intents.
package nlp

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// "1,5jt" -> "1.5jt": a comma directly before a magnitude suffix is a
	// decimal separator, not a thousands separator.
	commaBeforeSuffixRe = regexp.MustCompile(`(\d+),(\d+)\s*(jt|juta|mio|rb|ribu|rebu|k)\b`)

	millionSuffixRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(jt|juta|mio)\b`)
	thousandSuffixRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(rb|ribu|rebu|k)\b`)

	currencyNoiseRe = regexp.MustCompile(`\b(?:rp|rupiah|idr)\.?\s*`)

	suffixBaseRe = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// Normalize rewrites informal magnitude shorthand into canonical numeric
// text. Rewrites run in a fixed order: separator unification next to a
// suffix, suffix expansion (jt/mio/juta x1,000,000; rb/k/ribu/rebu
// x1,000), then currency-word stripping. Only the numeric token
// immediately preceding a suffix is multiplied.
func Normalize(text string) string {
	t := strings.ToLower(text)

	t = commaBeforeSuffixRe.ReplaceAllString(t, "$1.$2$3")
	t = expandSuffix(t, millionSuffixRe, 1_000_000)
	t = expandSuffix(t, thousandSuffixRe, 1_000)
	t = currencyNoiseRe.ReplaceAllString(t, "")

	return t
}

func expandSuffix(text string, re *regexp.Regexp, multiplier float64) string {
	return re.ReplaceAllStringFunc(text, func(match string) string {
		base := suffixBaseRe.FindString(match)
		v, err := strconv.ParseFloat(base, 64)
		if err != nil {
			return match
		}
		return strconv.FormatFloat(v*multiplier, 'f', -1, 64)
	})
}
