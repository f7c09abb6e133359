// Package ocr extracts transaction fields from raw receipt text. The
// text itself comes from a service.ReceiptReader; this package only
// does the field extraction, so it stays testable without an OCR
// backend.
package ocr

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// minReceiptAmount filters out small numbers like dates and quantities.
const minReceiptAmount = 100

// Receipt holds the fields extracted from receipt text. Amount 0 means
// no amount could be found; Date zero means no date was printed.
type Receipt struct {
	Date     time.Time
	Merchant string
	Amount   float64
}

var (
	// Labeled totals win over everything else. The last labeled match
	// is usually the grand total.
	labeledTotalRe = regexp.MustCompile(`(?i)(?:grand total|total|bayar|jumlah|amount)[^\d]*([\d.,]+)`)
	numberRe       = regexp.MustCompile(`\d+[\d.,]*`)
	dateRe         = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})\b`)
	digitLineRe    = regexp.MustCompile(`\d`)
	nonDigitRe     = regexp.MustCompile(`[^\d]`)
)

// ParseReceiptText extracts an amount, merchant and date from raw OCR
// text. It prefers a labeled total; otherwise it falls back to the
// largest plausible number on the receipt.
func ParseReceiptText(text string) Receipt {
	return Receipt{
		Amount:   extractAmount(text),
		Merchant: extractMerchant(text),
		Date:     extractDate(text),
	}
}

func extractAmount(text string) float64 {
	if matches := labeledTotalRe.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		return cleanAmount(matches[len(matches)-1][1])
	}

	var largest float64
	for _, num := range numberRe.FindAllString(text, -1) {
		if val := cleanAmount(num); val > minReceiptAmount && val > largest {
			largest = val
		}
	}
	return largest
}

// cleanAmount normalizes Indonesian currency formatting, where the dot
// is a thousands separator and the comma a decimal separator.
func cleanAmount(s string) float64 {
	cleaned := strings.ReplaceAll(s, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if val, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return val
	}

	digitsOnly := nonDigitRe.ReplaceAllString(s, "")
	if val, err := strconv.ParseFloat(digitsOnly, 64); err == nil {
		return val
	}
	return 0
}

// extractMerchant takes the first line that carries no digits, which on
// printed receipts is almost always the store name header.
func extractMerchant(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || digitLineRe.MatchString(line) {
			continue
		}
		return line
	}
	return ""
}

func extractDate(text string) time.Time {
	m := dateRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
}
