package nlp

import (
	"regexp"
	"strconv"
	"strings"
)

// minAmount filters out small numbers that are almost never money in this
// domain: quantities, dates, house numbers.
const minAmount = 100

var numberTokenRe = regexp.MustCompile(`\d+(?:[.,]\d+)*`)

var separatorReplacer = strings.NewReplacer(".", "", ",", "")

// ExtractAmount pulls the most plausible monetary amount out of free text.
// The text is normalized first, then numeric tokens are scanned from the
// right: amounts usually trail the phrase ("makan siang 50rb"). The first
// candidate >= 100 wins, with dots and commas stripped as thousands
// separators. Returns 0 when nothing qualifies; 0 is the universal "not
// monetary" sentinel.
//
// Messages containing several qualifying amounts pick the rightmost one;
// nothing stronger is guaranteed.
func ExtractAmount(text string) float64 {
	t := Normalize(text)

	tokens := numberTokenRe.FindAllString(t, -1)
	for i := len(tokens) - 1; i >= 0; i-- {
		cleaned := separatorReplacer.Replace(tokens[i])
		v, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			continue
		}
		if v >= minAmount {
			return v
		}
	}

	return 0
}
