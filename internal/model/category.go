// Package model defines the core domain models used throughout the application.
package model

import "strings"

// Category is one of the fixed spending/income categories a transaction can
// belong to. CategoryLainLain is the "unclassified" sentinel; a transaction
// always carries a category, never an empty one.
type Category string

// The fixed category set.
const (
	CategoryMakanan      Category = "Makanan"
	CategoryTransportasi Category = "Transportasi"
	CategoryBelanja      Category = "Belanja"
	CategoryTagihan      Category = "Tagihan"
	CategoryInvestasi    Category = "Investasi"
	CategoryGaji         Category = "Gaji"
	CategoryLainLain     Category = "Lain-lain"
)

// Categories returns the full category set in presentation order,
// including the Lain-lain sentinel.
func Categories() []Category {
	return []Category{
		CategoryMakanan,
		CategoryTransportasi,
		CategoryBelanja,
		CategoryTagihan,
		CategoryInvestasi,
		CategoryGaji,
		CategoryLainLain,
	}
}

// ParseCategory resolves a user-supplied label to a known category,
// case-insensitively. The boolean reports whether the label matched.
func ParseCategory(label string) (Category, bool) {
	label = strings.TrimSpace(label)
	for _, c := range Categories() {
		if strings.EqualFold(string(c), label) {
			return c, true
		}
	}
	return CategoryLainLain, false
}

// IsIncome reports whether transactions in this category represent money
// coming in rather than going out.
func (c Category) IsIncome() bool {
	return c == CategoryGaji
}

func (c Category) String() string {
	return string(c)
}
