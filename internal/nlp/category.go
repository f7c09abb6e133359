package nlp

import (
	"strings"

	"github.com/adikusuma/duitbot/internal/model"
)

// categoryKeywords maps each category to the substrings that signal it.
// Order matters: the first category with a hit wins, so spending
// categories come before income.
var categoryKeywords = []struct {
	category model.Category
	keywords []string
}{
	{model.CategoryMakanan, []string{
		"makan", "minum", "resto", "warung", "kopi", "cafe", "food", "dinner", "lunch",
		"ngopi", "gofood", "grabfood", "mixue", "starbucks", "haus", "mie", "bakso", "kenangan",
	}},
	{model.CategoryTransportasi, []string{
		"gojek", "grab", "bensin", "parkir", "tol", "tiket", "kereta", "bus",
		"ojol", "maxim", "pertalite", "pertamax", "shell",
	}},
	{model.CategoryBelanja, []string{
		"beli", "shopee", "tokopedia", "mall", "supermarket", "minimarket", "indo", "alfa",
		"belanja", "tiktok shop", "alfamart", "indomaret", "sayur",
	}},
	{model.CategoryTagihan, []string{
		"listrik", "air", "wifi", "internet", "pulsa", "asuransi", "kost", "sewa",
		"pln", "pdam", "indihome", "bpjs", "netflix", "spotify",
	}},
	{model.CategoryInvestasi, []string{
		"saham", "reksadana", "crypto", "emas", "invest", "bibit", "ajaib", "pluang",
	}},
	{model.CategoryGaji, []string{
		"gaji", "salary", "bonus", "transfer masuk", "income", "payroll",
	}},
}

// Classify maps free text to a category by case-insensitive substring
// match against the ordered keyword table. No hit returns
// CategoryLainLain; the function is total over the fixed set.
func Classify(text string) model.Category {
	lower := strings.ToLower(text)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.category
			}
		}
	}
	return model.CategoryLainLain
}

// TransactionType derives the transaction direction from the category:
// Gaji is income, everything else is an expense.
func TransactionType(category model.Category) model.TransactionType {
	if category.IsIncome() {
		return model.TypeIncome
	}
	return model.TypeExpense
}
