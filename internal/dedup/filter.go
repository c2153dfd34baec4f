package dedup

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/xaenox/marketwatch/internal/models"
	"github.com/xaenox/marketwatch/internal/storage"
	"go.uber.org/zap"
)

const DefaultContentLength = 50

// Filter decides whether a scraped message candidate is new: not seen
// before and not older than the staleness threshold. Seen fingerprints are
// kept in memory for the fast path and written through to the ledger so a
// restart can reload them.
type Filter struct {
	ledger        storage.FingerprintStore
	staleness     time.Duration
	contentLength int
	seen          map[string]struct{}
	logger        *zap.Logger
}

func NewFilter(ledger storage.FingerprintStore, staleness time.Duration, contentLength int, logger *zap.Logger) *Filter {
	if contentLength <= 0 {
		contentLength = DefaultContentLength
	}
	return &Filter{
		ledger:        ledger,
		staleness:     staleness,
		contentLength: contentLength,
		seen:          make(map[string]struct{}),
		logger:        logger,
	}
}

// Preload loads previously recorded fingerprints from the ledger so already
// processed messages are not surfaced again after a restart.
func (f *Filter) Preload(ctx context.Context) error {
	fingerprints, err := f.ledger.ListFingerprints(ctx)
	if err != nil {
		return err
	}
	for _, fp := range fingerprints {
		f.seen[fp] = struct{}{}
	}
	f.logger.Info("Loaded fingerprint ledger", zap.Int("count", len(fingerprints)))
	return nil
}

// IsNew reports whether the candidate should be processed. Stale candidates
// are recorded as seen but not surfaced, so they are not rechecked every
// cycle.
func (f *Filter) IsNew(ctx context.Context, raw models.RawMessage, now time.Time) bool {
	fp := f.Fingerprint(raw)

	if _, ok := f.seen[fp]; ok {
		return false
	}

	f.seen[fp] = struct{}{}
	if err := f.ledger.RecordFingerprint(ctx, raw.ConversationID, fp, now); err != nil {
		f.logger.Error("Failed to record fingerprint",
			zap.Error(err),
			zap.String("conversation_id", raw.ConversationID))
	}

	if !raw.DetectedAt.IsZero() && now.Sub(raw.DetectedAt) > f.staleness {
		f.logger.Debug("Dropping stale message",
			zap.String("conversation_id", raw.ConversationID),
			zap.Duration("age", now.Sub(raw.DetectedAt)))
		return false
	}

	return true
}

// Fingerprint derives the dedup key from conversation, a content prefix and
// the sender. Two distinct messages sharing all three within the prefix
// window collide and the later one is dropped; that window is the accepted
// tradeoff, not a defect to paper over.
func (f *Filter) Fingerprint(raw models.RawMessage) string {
	content := raw.Content
	if len(content) > f.contentLength {
		content = content[:f.contentLength]
	}

	h := sha1.New()
	h.Write([]byte(raw.ConversationID))
	h.Write([]byte("|"))
	h.Write([]byte(content))
	h.Write([]byte("|"))
	h.Write([]byte(raw.SenderName))
	return hex.EncodeToString(h.Sum(nil))
}
