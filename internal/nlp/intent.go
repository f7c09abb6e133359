package nlp

import (
	"context"
	"log/slog"
	"strings"

	"github.com/adikusuma/duitbot/internal/model"
	"github.com/adikusuma/duitbot/internal/service"
)

// Intent is the action a user message asks for.
type Intent string

// Recognized intents.
const (
	IntentAddTransaction Intent = "ADD_TRANSACTION"
	IntentCheckBudget    Intent = "CHECK_BUDGET"
	IntentQuerySummary   Intent = "QUERY_SUMMARY"
	IntentHelp           Intent = "HELP"
	IntentGreeting       Intent = "GREETING"
	IntentCancel         Intent = "CANCEL"
	IntentEditInProgress Intent = "EDIT_IN_PROGRESS"
	IntentUnknown        Intent = "UNKNOWN"
)

// IntentResult is a classified intent with its confidence. Candidate is
// set only when the oracle produced a structured transaction.
type IntentResult struct {
	Candidate  *model.OracleCandidate
	Intent     Intent
	Confidence float64
}

var (
	cancelKeywords   = []string{"batal", "cancel", "gajadi"}
	budgetKeywords   = []string{"sisa", "budget", "anggaran", "limit", "total pengeluaran"}
	reportKeywords   = []string{"laporan", "report", "rekap"}
	helpKeywords     = []string{"help", "bantuan", "menu", "/help"}
	greetingKeywords = []string{"halo", "hai", "hello", "pagi", "siang", "malam"}
)

// IntentClassifier chooses one intent for a message given the current
// conversation state. Local rules always run first; the oracle is
// consulted only when every rule is inconclusive, so a slow oracle can
// never delay a message that classifies locally.
type IntentClassifier struct {
	oracle service.Oracle // may be nil
	logger *slog.Logger
}

// NewIntentClassifier creates an intent classifier. A nil oracle disables
// the fallback; inconclusive messages then classify as IntentUnknown.
func NewIntentClassifier(oracle service.Oracle, logger *slog.Logger) *IntentClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntentClassifier{oracle: oracle, logger: logger}
}

// Classify resolves the intent of a message.
//
// In an edit-waiting state only two intents exist: a cancel keyword, or
// edit input routed to the field validator. Otherwise intents resolve in
// priority order, with an extractable amount first: a message carrying
// both an amount and a budget keyword records money, since a missed
// transaction costs more than a missed status read.
func (c *IntentClassifier) Classify(ctx context.Context, text string, state model.ConversationState) IntentResult {
	lower := strings.ToLower(strings.TrimSpace(text))

	if state.IsEditing() {
		if containsAny(lower, cancelKeywords) {
			return IntentResult{Intent: IntentCancel, Confidence: 1.0}
		}
		return IntentResult{Intent: IntentEditInProgress, Confidence: 0.9}
	}

	if ExtractAmount(lower) > 0 {
		return IntentResult{Intent: IntentAddTransaction, Confidence: 0.95}
	}
	if containsAny(lower, budgetKeywords) {
		return IntentResult{Intent: IntentCheckBudget, Confidence: 0.9}
	}
	if containsAny(lower, reportKeywords) {
		return IntentResult{Intent: IntentQuerySummary, Confidence: 0.9}
	}
	if containsAny(lower, helpKeywords) {
		return IntentResult{Intent: IntentHelp, Confidence: 1.0}
	}
	if containsAny(lower, greetingKeywords) {
		return IntentResult{Intent: IntentGreeting, Confidence: 0.8}
	}

	if c.oracle != nil {
		if result, ok := c.classifyWithOracle(ctx, text); ok {
			return result
		}
	}

	return IntentResult{Intent: IntentUnknown, Confidence: 0}
}

func (c *IntentClassifier) classifyWithOracle(ctx context.Context, text string) (IntentResult, bool) {
	candidate, err := c.oracle.ParseTransaction(ctx, text)
	if err != nil {
		c.logger.Debug("oracle parse failed, falling back to UNKNOWN", "error", err)
		return IntentResult{}, false
	}
	if candidate == nil || !candidate.IsTransaction || candidate.Amount <= 0 {
		return IntentResult{}, false
	}
	return IntentResult{
		Intent:     IntentAddTransaction,
		Confidence: 0.85,
		Candidate:  candidate,
	}, true
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
