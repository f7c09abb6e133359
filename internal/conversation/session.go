// Package conversation holds the per-user transaction proposal state
// machine: propose, edit fields, confirm or discard.
package conversation

import (
	"fmt"
	"sync"
	"time"

	"github.com/adikusuma/duitbot/internal/common"
	"github.com/adikusuma/duitbot/internal/model"
)

// Field names a pending-transaction field a user can edit.
type Field int

// Editable fields.
const (
	FieldAmount Field = iota
	FieldCategory
	FieldDate
)

// Session is one user's conversation state. At most one pending
// transaction exists per session, and it exists exactly when the state is
// not IDLE. Sessions are not safe for concurrent use on their own; the
// Manager serializes access per user.
type Session struct {
	pending *model.PendingTransaction
	state   model.ConversationState
	mu      sync.Mutex
}

// State returns the current conversation state.
func (s *Session) State() model.ConversationState {
	return s.state
}

// Pending returns a copy of the pending transaction. The boolean is false
// when the session is idle.
func (s *Session) Pending() (model.PendingTransaction, bool) {
	if s.pending == nil {
		return model.PendingTransaction{}, false
	}
	return *s.pending, true
}

// Propose installs a new candidate and moves to PENDING. A candidate
// arriving while another is pending replaces it; the user is looking at
// the newest proposal either way.
func (s *Session) Propose(p model.PendingTransaction) error {
	if p.Amount <= 0 {
		return fmt.Errorf("candidate amount must be positive, got %v", p.Amount)
	}
	if p.Category == "" {
		p.Category = model.CategoryLainLain
	}
	if p.Type == "" {
		p.Type = model.TypeExpense
	}
	s.pending = &p
	s.state = model.StatePending
	return nil
}

// BeginEdit moves from PENDING into the edit-waiting state for a field.
func (s *Session) BeginEdit(field Field) error {
	if s.state != model.StatePending {
		return fmt.Errorf("%w: cannot edit from %s", common.ErrInvalidTransition, s.state)
	}
	switch field {
	case FieldAmount:
		s.state = model.StateEditingAmount
	case FieldCategory:
		s.state = model.StateEditingCategory
	case FieldDate:
		s.state = model.StateEditingDate
	default:
		return fmt.Errorf("%w: unknown field %d", common.ErrInvalidTransition, field)
	}
	return nil
}

// CancelEdit abandons an in-progress edit, returning to PENDING with the
// candidate unchanged.
func (s *Session) CancelEdit() error {
	if !s.state.IsEditing() {
		return fmt.Errorf("%w: cancel edit from %s", common.ErrInvalidTransition, s.state)
	}
	s.state = model.StatePending
	return nil
}

// ApplyAmount updates the candidate amount and returns to PENDING. Only
// valid from EDITING_AMOUNT with a positive amount.
func (s *Session) ApplyAmount(amount float64) error {
	if s.state != model.StateEditingAmount {
		return fmt.Errorf("%w: apply amount from %s", common.ErrInvalidTransition, s.state)
	}
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %v", amount)
	}
	s.pending.Amount = amount
	s.state = model.StatePending
	return nil
}

// ApplyCategory updates the candidate category and returns to PENDING.
// Valid from EDITING_CATEGORY, and also from PENDING for the
// button-driven category picker, which bypasses the text validator.
func (s *Session) ApplyCategory(category model.Category) error {
	if s.state != model.StateEditingCategory && s.state != model.StatePending {
		return fmt.Errorf("%w: apply category from %s", common.ErrInvalidTransition, s.state)
	}
	s.pending.Category = category
	s.pending.Type = model.TypeExpense
	if category.IsIncome() {
		s.pending.Type = model.TypeIncome
	}
	s.state = model.StatePending
	return nil
}

// ApplyDate updates the candidate date and returns to PENDING.
func (s *Session) ApplyDate(date time.Time) error {
	if s.state != model.StateEditingDate {
		return fmt.Errorf("%w: apply date from %s", common.ErrInvalidTransition, s.state)
	}
	s.pending.Date = date
	s.state = model.StatePending
	return nil
}

// Confirm destroys the candidate, returns it for commitment, and resets
// to IDLE. Only valid from PENDING.
func (s *Session) Confirm() (model.PendingTransaction, error) {
	if s.state != model.StatePending {
		return model.PendingTransaction{}, fmt.Errorf("%w: confirm from %s", common.ErrInvalidTransition, s.state)
	}
	p := *s.pending
	s.reset()
	return p, nil
}

// Ignore discards the candidate from any non-idle state and resets to
// IDLE. The ledger is untouched.
func (s *Session) Ignore() error {
	if s.state == model.StateIdle {
		return common.ErrNoPendingTransaction
	}
	s.reset()
	return nil
}

func (s *Session) reset() {
	s.pending = nil
	s.state = model.StateIdle
}
