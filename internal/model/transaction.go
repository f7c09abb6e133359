package model

import "time"

// TransactionType distinguishes money going out from money coming in.
type TransactionType string

// Transaction type constants.
const (
	TypeExpense TransactionType = "expense"
	TypeIncome  TransactionType = "income"
)

// Transaction is a committed financial transaction. Once stored it is
// immutable except through an explicit delete or undo.
type Transaction struct {
	Date        time.Time
	Category    Category
	Description string
	Type        TransactionType
	ID          int64
	UserID      int64
	Amount      float64
}

// PendingTransaction is a candidate produced by the extraction pipeline,
// an OCR result, or the oracle. It lives only inside a conversation
// session and is destroyed on confirm or cancel. Amount is always > 0
// inside a stored candidate; zero means "not a transaction" and such a
// candidate is never stored.
type PendingTransaction struct {
	Date       time.Time // zero means "use commit time"
	Category   Category
	Merchant   string
	Type       TransactionType
	Amount     float64
	Confidence float64
}

// OracleCandidate is the structured result the LLM oracle returns for a
// free-text message. IsTransaction false means the text is just chat.
type OracleCandidate struct {
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	Type          string  `json:"type"`
	Amount        float64 `json:"amount"`
	IsTransaction bool    `json:"is_transaction"`
}
