// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/adikusuma/duitbot/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Category  *model.Category
	Type      *model.TransactionType
	Limit     int
	Offset    int
}

// Storage defines the contract for the ledger persistence layer.
//
// CommitUsage and ReverseUsage must be single atomic updates at the store
// boundary; callers never read-modify-write usage themselves. Both are
// no-ops when no budget entry exists for the given user, category and
// month, since budgets are optional.
type Storage interface {
	// User operations
	GetOrCreateUser(ctx context.Context, externalID, username string) (*model.User, error)
	GetUser(ctx context.Context, externalID string) (*model.User, error)
	GetAllUsers(ctx context.Context) ([]model.User, error)
	SetPinnedMessageRef(ctx context.Context, userID int64, ref string) error

	// Transaction operations
	AppendTransaction(ctx context.Context, txn model.Transaction) (int64, error)
	DeleteTransaction(ctx context.Context, userID, id int64) (bool, error)
	GetTransactionByID(ctx context.Context, userID, id int64) (*model.Transaction, error)
	GetLastTransaction(ctx context.Context, userID int64) (*model.Transaction, error)
	ListTransactions(ctx context.Context, userID int64, filter TransactionFilter) ([]model.Transaction, error)

	// Budget operations
	GetBudgetEntries(ctx context.Context, userID int64, month, year int) ([]model.BudgetEntry, error)
	GetBudgetEntry(ctx context.Context, userID int64, category model.Category, month, year int) (*model.BudgetEntry, error)
	UpsertBudgetLimit(ctx context.Context, userID int64, category model.Category, limit float64, month, year int) error
	CommitUsage(ctx context.Context, userID int64, category model.Category, amount float64, month, year int) error
	ReverseUsage(ctx context.Context, userID int64, category model.Category, amount float64, month, year int) error

	// Income operations
	UpsertMonthlyIncome(ctx context.Context, userID int64, amount float64, month, year int) error
	GetLatestIncome(ctx context.Context, userID int64) (*model.Income, error)

	// Saving goal operations
	AddSavingGoal(ctx context.Context, userID int64, name string, target float64) (int64, error)
	AddToSavingGoal(ctx context.Context, userID, goalID int64, amount float64) (*model.SavingGoal, error)
	GetSavingGoals(ctx context.Context, userID int64) ([]model.SavingGoal, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Oracle is the LLM fallback collaborator. Every method degrades at the
// call site: an error here must never reach the user as an error.
type Oracle interface {
	// ParseTransaction turns free text into a structured candidate, or
	// returns a candidate with IsTransaction false when the text is chat.
	ParseTransaction(ctx context.Context, text string) (*model.OracleCandidate, error)
	// GenerateInsight turns raw analysis data into a prose insight.
	GenerateInsight(ctx context.Context, analysis string) (string, error)
	// Chat produces a prose reply to chit-chat.
	Chat(ctx context.Context, text string) (string, error)
}

// ReceiptReader is the OCR collaborator: it turns a receipt image into
// raw text. Field extraction from that text happens in internal/ocr.
type ReceiptReader interface {
	ReadText(ctx context.Context, imageRef string) (string, error)
}

// Notifier delivers an outbound message to a user through the transport.
type Notifier interface {
	Send(ctx context.Context, externalID, message string) error
}

// RefNotifier is a Notifier whose transport hands back a stable message
// reference after sending. The digest broadcaster uses it to keep each
// user's pinned dashboard pointing at the latest digest.
type RefNotifier interface {
	Notifier
	SendWithRef(ctx context.Context, externalID, message string) (string, error)
}

// RetryOptions configures retry behavior for transient failures.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
