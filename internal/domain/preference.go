package domain

import (
	"encoding/json"
	"regexp"
	"time"
)

// Reserved preference keys managed by the preference service
const (
	PreferenceKeyFavorites   = "favorites"
	PreferenceKeyRecentTools = "recent_tools"
)

// DefaultPreferenceQuotaBytes mirrors the per-origin budget browsers give localStorage
const DefaultPreferenceQuotaBytes int64 = 5 * 1024 * 1024

// MaxRecentTools caps the recent_tools list
const MaxRecentTools = 10

var preferenceKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// Preference is a single stored key for an account
type Preference struct {
	AccountID string
	Key       string
	Value     json.RawMessage
	UpdatedAt time.Time
}

// Size is the number of bytes the entry counts against the quota
func (p *Preference) Size() int64 {
	return PreferenceSize(p.Key, p.Value)
}

// PreferenceSize returns the quota cost of storing value under key
func PreferenceSize(key string, value []byte) int64 {
	return int64(len(key) + len(value))
}

// PreferenceUsage reports how much of the quota an account has consumed
type PreferenceUsage struct {
	UsedBytes  int64
	QuotaBytes int64
	Keys       int
}

// Remaining returns the free bytes, never negative
func (u PreferenceUsage) Remaining() int64 {
	if u.UsedBytes >= u.QuotaBytes {
		return 0
	}
	return u.QuotaBytes - u.UsedBytes
}

// ValidatePreferenceKey checks the key charset and length
func ValidatePreferenceKey(key string) error {
	if !preferenceKeyPattern.MatchString(key) {
		return ErrInvalidPreferenceKey
	}
	return nil
}

// ValidatePreferenceValue requires the value to be a single JSON document
func ValidatePreferenceValue(value []byte) error {
	if len(value) == 0 || !json.Valid(value) {
		return ErrInvalidPreferenceJSON
	}
	return nil
}
