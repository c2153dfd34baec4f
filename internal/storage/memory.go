package storage

import (
	"context"
	"sync"
	"time"

	"github.com/xaenox/marketwatch/internal/models"
)

// MemoryStorage keeps everything in process memory. Fingerprints recorded
// here do not survive a restart; use PostgresStorage for a durable ledger.
type MemoryStorage struct {
	mu           sync.RWMutex
	fingerprints map[string]time.Time
	messages     map[string][]*models.Message
	accounts     []models.Account
	products     []models.Product
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		fingerprints: make(map[string]time.Time),
		messages:     make(map[string][]*models.Message),
	}
}

func (s *MemoryStorage) RecordFingerprint(ctx context.Context, conversationID, fingerprint string, seenAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fingerprints[fingerprint] = seenAt
	return nil
}

func (s *MemoryStorage) ListFingerprints(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fingerprints := make([]string, 0, len(s.fingerprints))
	for fp := range s.fingerprints {
		fingerprints = append(fingerprints, fp)
	}
	return fingerprints, nil
}

func (s *MemoryStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], msg)
	return nil
}

func (s *MemoryStorage) MessagesByConversation(ctx context.Context, conversationID string, limit int) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[conversationID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	result := make([]*models.Message, len(msgs))
	copy(result, msgs)
	return result, nil
}

// AddAccount seeds a monitored account, typically from configuration.
func (s *MemoryStorage) AddAccount(account models.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = append(s.accounts, account)
}

func (s *MemoryStorage) ListUsableAccounts(ctx context.Context) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var usable []models.Account
	for _, account := range s.accounts {
		if account.Usable {
			usable = append(usable, account)
		}
	}
	return usable, nil
}

// AddProduct seeds a listed product, typically from configuration.
func (s *MemoryStorage) AddProduct(product models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = append(s.products, product)
}

func (s *MemoryStorage) ListProducts(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]models.Product, len(s.products))
	copy(products, s.products)
	return products, nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
