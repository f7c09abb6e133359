package model

import "time"

// User is a registered chat user. ExternalID is the transport-level
// identity (e.g. a chat platform user ID); ID is our own key.
type User struct {
	ExternalID       string
	Username         string
	PinnedMessageRef string
	CreatedAt        time.Time
	ID               int64
}

// BudgetEntry holds one month's spending limit and cumulative usage for
// one user and category. Usage always equals the sum of committed expense
// amounts for that user, category and month, adjusted by reversals.
type BudgetEntry struct {
	Category Category
	UserID   int64
	Month    int
	Year     int
	Limit    float64
	Usage    float64
}

// PercentUsed returns usage as a fraction of the limit, or 0 when no
// limit is set.
func (b BudgetEntry) PercentUsed() float64 {
	if b.Limit <= 0 {
		return 0
	}
	return b.Usage / b.Limit
}

// Remaining returns the unspent portion of the limit, clamped at zero.
func (b BudgetEntry) Remaining() float64 {
	r := b.Limit - b.Usage
	if r < 0 {
		return 0
	}
	return r
}

// Income records a user's declared monthly income.
type Income struct {
	UserID int64
	Month  int
	Year   int
	Amount float64
}

// SavingGoal is a named savings target with accumulated progress.
type SavingGoal struct {
	Name    string
	ID      int64
	UserID  int64
	Target  float64
	Current float64
	Active  bool
}

// Progress returns how much of the target has been saved, as a fraction.
func (g SavingGoal) Progress() float64 {
	if g.Target <= 0 {
		return 0
	}
	return g.Current / g.Target
}
