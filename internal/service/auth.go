package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/cloo-solutions/onetool/internal/domain"
	"github.com/google/uuid"
)

const apiKeyPrefix = "otk_"

// UUIDGenerator generates unique identifiers
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByName(ctx context.Context, name string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
}

type APIKeyRepository interface {
	Create(ctx context.Context, key *domain.APIKey) error
	GetByID(ctx context.Context, id string) (*domain.APIKey, error)
	GetByHash(ctx context.Context, hash string) (*domain.APIKey, error)
	GetByAccountID(ctx context.Context, accountID string) ([]*domain.APIKey, error)
	Revoke(ctx context.Context, id string) error
}

type AuthService struct {
	accountRepo AccountRepository
	keyRepo     APIKeyRepository
	uuidGen     UUIDGenerator
}

func NewAuthService(accountRepo AccountRepository, keyRepo APIKeyRepository, uuidGen UUIDGenerator) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
		keyRepo:     keyRepo,
		uuidGen:     uuidGen,
	}
}

func (s *AuthService) CreateAccount(ctx context.Context, name string) (*domain.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "account name is required")
	}

	account := domain.NewAccount(s.uuidGen.NewString(), name, time.Now().UTC())

	if err := domain.ValidateAccount(account); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid account", err)
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

func (s *AuthService) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	return s.accountRepo.List(ctx)
}

func (s *AuthService) GetAccountByName(ctx context.Context, name string) (*domain.Account, error) {
	return s.accountRepo.GetByName(ctx, strings.TrimSpace(name))
}

// ResolveAccount looks an account up by ID when ref is a UUID and by name otherwise.
func (s *AuthService) ResolveAccount(ctx context.Context, ref string) (*domain.Account, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "account is required")
	}
	if _, err := uuid.Parse(ref); err == nil {
		return s.accountRepo.GetByID(ctx, ref)
	}
	return s.accountRepo.GetByName(ctx, ref)
}

// CreateAPIKey issues a new random token for the account and returns the
// plaintext together with the stored key. The plaintext is never persisted.
func (s *AuthService) CreateAPIKey(ctx context.Context, accountID, name string) (string, *domain.APIKey, error) {
	if accountID == "" {
		return "", nil, domain.NewDomainError(domain.ErrCodeValidation, "account ID is required")
	}
	if name == "" {
		return "", nil, domain.NewDomainError(domain.ErrCodeValidation, "API key name is required")
	}

	if _, err := s.accountRepo.GetByID(ctx, accountID); err != nil {
		return "", nil, err
	}

	token, err := generateAPIToken()
	if err != nil {
		return "", nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to generate API key", err)
	}

	key, err := s.storeKey(ctx, accountID, name, token)
	if err != nil {
		return "", nil, err
	}

	return token, key, nil
}

// CreateAPIKeyWithToken stores a caller-supplied token, used for bootstrapping.
func (s *AuthService) CreateAPIKeyWithToken(ctx context.Context, accountID, name, token string) error {
	if accountID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "account ID is required")
	}
	if name == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "API key name is required")
	}
	if !IsValidAPIToken(token) {
		return domain.NewDomainError(domain.ErrCodeValidation, "invalid API key format (expected otk_<64 hex chars>)")
	}

	if _, err := s.accountRepo.GetByID(ctx, accountID); err != nil {
		return err
	}

	_, err := s.storeKey(ctx, accountID, name, token)
	return err
}

func (s *AuthService) storeKey(ctx context.Context, accountID, name, token string) (*domain.APIKey, error) {
	key := domain.NewAPIKey(s.uuidGen.NewString(), accountID, name, hashToken(token), time.Now().UTC())

	if err := domain.ValidateAPIKey(key); err != nil {
		return nil, err
	}

	if err := s.keyRepo.Create(ctx, key); err != nil {
		return nil, err
	}

	return key, nil
}

// ValidateAPIKey resolves a bearer token to its account ID.
func (s *AuthService) ValidateAPIKey(ctx context.Context, token string) (string, error) {
	if !IsValidAPIToken(token) {
		return "", domain.ErrInvalidAPIKey
	}

	key, err := s.keyRepo.GetByHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrAPIKeyNotFound) {
			return "", domain.ErrInvalidAPIKey
		}
		return "", err
	}

	if key.IsRevoked() {
		return "", domain.ErrAPIKeyRevoked
	}

	return key.AccountID, nil
}

func (s *AuthService) RevokeAPIKey(ctx context.Context, keyID string) error {
	if keyID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "API key ID is required")
	}

	return s.keyRepo.Revoke(ctx, keyID)
}

func (s *AuthService) ListAPIKeys(ctx context.Context, accountID string) ([]*domain.APIKey, error) {
	if accountID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "account ID is required")
	}

	return s.keyRepo.GetByAccountID(ctx, accountID)
}

func (s *AuthService) GetAPIKeyByHash(ctx context.Context, token string) (*domain.APIKey, error) {
	return s.keyRepo.GetByHash(ctx, hashToken(token))
}

func generateAPIToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return apiKeyPrefix + hex.EncodeToString(b), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// IsValidAPIToken checks the otk_ prefix followed by 64 hex characters.
func IsValidAPIToken(token string) bool {
	if !strings.HasPrefix(token, apiKeyPrefix) {
		return false
	}
	hexPart := token[len(apiKeyPrefix):]
	if len(hexPart) != 64 {
		return false
	}
	for _, c := range hexPart {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
