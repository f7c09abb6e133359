package model

// ConversationState tracks where a user is in the propose/confirm/edit
// dialog. Any state other than StateIdle implies a PendingTransaction
// exists for the user.
type ConversationState int

// Conversation states.
const (
	StateIdle ConversationState = iota
	StatePending
	StateEditingAmount
	StateEditingCategory
	StateEditingDate
)

// IsEditing reports whether the state is one of the edit-waiting states,
// where free text is routed to a field validator instead of the general
// intent ladder.
func (s ConversationState) IsEditing() bool {
	switch s {
	case StateEditingAmount, StateEditingCategory, StateEditingDate:
		return true
	default:
		return false
	}
}

func (s ConversationState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StatePending:
		return "PENDING"
	case StateEditingAmount:
		return "EDITING_AMOUNT"
	case StateEditingCategory:
		return "EDITING_CATEGORY"
	case StateEditingDate:
		return "EDITING_DATE"
	default:
		return "UNKNOWN"
	}
}
