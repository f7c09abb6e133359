// Package llm implements the oracle collaborator on top of hosted LLM
// APIs. It is a fallback only: local rules always run first, and every
// failure here degrades to a static reply at the call site.
package llm

import "context"

// Client defines the interface for LLM providers.
type Client interface {
	// ParseTransaction asks the provider to extract a structured
	// transaction candidate from free text.
	ParseTransaction(ctx context.Context, prompt string) (CandidateResponse, error)
	// Generate produces free-form prose for a prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}

// CandidateResponse is the provider's structured parse of a message.
type CandidateResponse struct {
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	Type          string  `json:"type"`
	Amount        float64 `json:"amount"`
	IsTransaction bool    `json:"is_transaction"`
}
