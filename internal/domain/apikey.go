package domain

import (
	"encoding/hex"
	"strings"
	"time"
)

// MaxAPIKeyNameLen bounds the human label on a key.
const MaxAPIKeyNameLen = 64

// APIKey is a bearer credential for one account. Only the SHA-256 of the
// token is stored; the token itself is shown once at creation.
type APIKey struct {
	ID        string
	AccountID string
	Name      string
	KeyHash   string // hex sha256 of the token
	CreatedAt time.Time
	RevokedAt *time.Time
}

// NewAPIKey creates a new APIKey instance
func NewAPIKey(id, accountID, name, keyHash string, createdAt time.Time) *APIKey {
	return &APIKey{
		ID:        id,
		AccountID: accountID,
		Name:      strings.TrimSpace(name),
		KeyHash:   keyHash,
		CreatedAt: createdAt,
	}
}

func (a *APIKey) IsRevoked() bool {
	return a.RevokedAt != nil
}

// Status is "revoked" or "active", as shown by the admin CLI.
func (a *APIKey) Status() string {
	if a.IsRevoked() {
		return "revoked"
	}
	return "active"
}

// ValidateAPIKey checks the fields required before a key is persisted.
func ValidateAPIKey(a *APIKey) error {
	if a == nil {
		return NewDomainError(ErrCodeValidation, "api key cannot be nil")
	}

	switch {
	case a.ID == "":
		return NewDomainError(ErrCodeValidation, "api key ID is required")
	case a.AccountID == "":
		return NewDomainError(ErrCodeValidation, "api key account ID is required")
	case a.Name == "":
		return NewDomainError(ErrCodeValidation, "api key name is required")
	case len(a.Name) > MaxAPIKeyNameLen:
		return NewDomainError(ErrCodeValidation, "api key name is too long")
	case !isSHA256Hex(a.KeyHash):
		return NewDomainError(ErrCodeValidation, "api key hash must be a hex sha256 digest")
	}

	return nil
}

func isSHA256Hex(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
