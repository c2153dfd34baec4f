package storage

import (
	"context"
	"time"

	"github.com/xaenox/marketwatch/internal/models"
)

// FingerprintStore is the idempotency ledger: fingerprints of every message
// the monitor has already seen, so a restart does not reprocess them.
type FingerprintStore interface {
	RecordFingerprint(ctx context.Context, conversationID, fingerprint string, seenAt time.Time) error
	ListFingerprints(ctx context.Context) ([]string, error)
}

type MessageStore interface {
	SaveMessage(ctx context.Context, msg *models.Message) error
	MessagesByConversation(ctx context.Context, conversationID string, limit int) ([]*models.Message, error)
}

// AccountStore and ProductStore are read-only lookups; account and product
// lifecycle is owned outside the monitor.
type AccountStore interface {
	ListUsableAccounts(ctx context.Context) ([]models.Account, error)
}

type ProductStore interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}

type Storage interface {
	FingerprintStore
	MessageStore
	AccountStore
	ProductStore
	Close() error
}
