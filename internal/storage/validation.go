package storage

import (
	"context"
	"fmt"
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}
	return ctx.Err()
}

func validateString(value, name string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	return nil
}

func validateUserID(userID int64) error {
	if userID <= 0 {
		return fmt.Errorf("userID must be positive, got %d", userID)
	}
	return nil
}

func validateAmount(amount float64, name string) error {
	if amount <= 0 {
		return fmt.Errorf("%s must be positive, got %v", name, amount)
	}
	return nil
}

func validateMonthYear(month, year int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("month must be 1-12, got %d", month)
	}
	if year < 2000 || year > 3000 {
		return fmt.Errorf("year out of range: %d", year)
	}
	return nil
}
