package nlp

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultMerchant is the placeholder when nothing usable remains after
// stripping amounts and stopwords.
const DefaultMerchant = "Transaksi"

// merchantStopwords are transaction verbs and prepositions that carry no
// counterparty information.
var merchantStopwords = []string{
	"beli", "bayar", "untuk", "ke", "di", "makan", "minum",
	"transaksi", "transfer", "ngopi",
}

var (
	merchantAmountRe   = regexp.MustCompile(`\d+[\d.,]*\s*(jt|juta|mio|rb|ribu|rebu|k)?\b`)
	merchantStopwordRe *regexp.Regexp
	whitespaceRe       = regexp.MustCompile(`\s+`)
)

func init() {
	merchantStopwordRe = regexp.MustCompile(`\b(` + strings.Join(merchantStopwords, "|") + `)\b`)
}

// ExtractMerchant guesses the counterparty label from free text by
// stripping amounts and stopwords, collapsing whitespace, and
// title-casing what is left. "mixue 48rb" -> "Mixue".
func ExtractMerchant(text string) string {
	clean := strings.ToLower(text)
	clean = merchantAmountRe.ReplaceAllString(clean, "")
	clean = merchantStopwordRe.ReplaceAllString(clean, "")
	clean = strings.TrimSpace(whitespaceRe.ReplaceAllString(clean, " "))

	if clean == "" {
		return DefaultMerchant
	}
	return titleCase(clean)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
