package domain

import (
	"fmt"
	"time"
)

// Account owns API keys and preference data
type Account struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// NewAccount creates a new Account instance
func NewAccount(id, name string, createdAt time.Time) *Account {
	return &Account{
		ID:        id,
		Name:      name,
		CreatedAt: createdAt,
	}
}

// ValidateAccount validates an Account instance
func ValidateAccount(a *Account) error {
	if a == nil {
		return fmt.Errorf("account cannot be nil")
	}

	if a.ID == "" {
		return fmt.Errorf("account ID is required")
	}

	if a.Name == "" {
		return fmt.Errorf("account Name is required")
	}

	if len(a.Name) > 128 {
		return fmt.Errorf("account Name must be at most 128 characters")
	}

	return nil
}
