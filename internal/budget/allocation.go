package budget

import (
	"fmt"
	"strconv"
	"strings"
)

// Allocation splits a monthly income across the standard buckets.
type Allocation struct {
	Essentials    float64
	Savings       float64
	Investment    float64
	Discretionary float64
}

// Allocation rule shares: 50/20/10/20.
const (
	essentialsShare    = 0.50
	savingsShare       = 0.20
	investmentShare    = 0.10
	discretionaryShare = 0.20
)

// Recommend splits an income 50/20/10/20 and renders the summary message.
// The function is stateless and pure; it serves both the income-set
// action and on-demand what-if queries.
func Recommend(income float64) (string, Allocation) {
	a := Allocation{
		Essentials:    income * essentialsShare,
		Savings:       income * savingsShare,
		Investment:    income * investmentShare,
		Discretionary: income * discretionaryShare,
	}

	msg := fmt.Sprintf(
		"Ringkasan gaji bulan ini\n\n"+
			"Pokok: Rp%s\n"+
			"Tabungan: Rp%s\n"+
			"Investasi: Rp%s\n"+
			"Fleksibel: Rp%s",
		FormatRupiah(a.Essentials),
		FormatRupiah(a.Savings),
		FormatRupiah(a.Investment),
		FormatRupiah(a.Discretionary))

	return msg, a
}

// Sum returns the total across all buckets; it always equals the income
// the allocation was derived from.
func (a Allocation) Sum() float64 {
	return a.Essentials + a.Savings + a.Investment + a.Discretionary
}

// FormatRupiah renders an amount with Indonesian thousands separators,
// rounded to whole rupiah: 1250000 -> "1.250.000".
func FormatRupiah(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	digits := strconv.FormatFloat(amount, 'f', 0, 64)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return b.String()
}
