package dedup_test

import (
	"context"
	"testing"
	"time"

	"github.com/xaenox/marketwatch/internal/dedup"
	"github.com/xaenox/marketwatch/internal/models"
	"github.com/xaenox/marketwatch/internal/storage"
	"go.uber.org/zap"
)

func newFilter(t *testing.T) (*dedup.Filter, *storage.MemoryStorage) {
	t.Helper()

	store := storage.NewMemoryStorage()
	return dedup.NewFilter(store, 24*time.Hour, dedup.DefaultContentLength, zap.NewNop()), store
}

func TestIsNewIdempotence(t *testing.T) {
	filter, _ := newFilter(t)
	now := time.Now()

	raw := models.RawMessage{
		ConversationID: "conv-1",
		SenderName:     "Jane",
		Content:        "Is this still available?",
		DetectedAt:     now,
	}

	if !filter.IsNew(context.Background(), raw, now) {
		t.Fatal("first sighting should be new")
	}
	if filter.IsNew(context.Background(), raw, now) {
		t.Fatal("second sighting should be rejected")
	}
	if filter.IsNew(context.Background(), raw, now) {
		t.Fatal("third sighting should still be rejected")
	}
}

func TestIsNewDistinguishesMessages(t *testing.T) {
	filter, _ := newFilter(t)
	now := time.Now()

	base := models.RawMessage{
		ConversationID: "conv-1",
		SenderName:     "Jane",
		Content:        "Is this still available?",
		DetectedAt:     now,
	}
	if !filter.IsNew(context.Background(), base, now) {
		t.Fatal("first message should be new")
	}

	differentContent := base
	differentContent.Content = "Can you do $30?"
	if !filter.IsNew(context.Background(), differentContent, now) {
		t.Fatal("different content should be new")
	}

	differentSender := base
	differentSender.SenderName = "Bob"
	if !filter.IsNew(context.Background(), differentSender, now) {
		t.Fatal("different sender should be new")
	}

	differentConversation := base
	differentConversation.ConversationID = "conv-2"
	if !filter.IsNew(context.Background(), differentConversation, now) {
		t.Fatal("different conversation should be new")
	}
}

func TestStaleMessagesAreRecordedButNotSurfaced(t *testing.T) {
	filter, store := newFilter(t)
	now := time.Now()

	stale := models.RawMessage{
		ConversationID: "conv-1",
		SenderName:     "Jane",
		Content:        "old message",
		DetectedAt:     now.Add(-30 * time.Hour),
	}

	if filter.IsNew(context.Background(), stale, now) {
		t.Fatal("message older than the staleness threshold should not surface")
	}

	// Stale candidates are still written to the ledger so they are not
	// rechecked every cycle.
	fingerprints, err := store.ListFingerprints(context.Background())
	if err != nil {
		t.Fatalf("ListFingerprints failed: %v", err)
	}
	if len(fingerprints) != 1 {
		t.Fatalf("expected 1 recorded fingerprint, got %d", len(fingerprints))
	}

	if filter.IsNew(context.Background(), stale, now) {
		t.Fatal("stale message should stay rejected on recheck")
	}
}

func TestPreloadRestoresLedger(t *testing.T) {
	store := storage.NewMemoryStorage()
	now := time.Now()

	raw := models.RawMessage{
		ConversationID: "conv-1",
		SenderName:     "Jane",
		Content:        "Is this still available?",
		DetectedAt:     now,
	}

	first := dedup.NewFilter(store, 24*time.Hour, dedup.DefaultContentLength, zap.NewNop())
	if !first.IsNew(context.Background(), raw, now) {
		t.Fatal("first sighting should be new")
	}

	// A fresh filter over the same ledger simulates a process restart
	second := dedup.NewFilter(store, 24*time.Hour, dedup.DefaultContentLength, zap.NewNop())
	if err := second.Preload(context.Background()); err != nil {
		t.Fatalf("Preload failed: %v", err)
	}
	if second.IsNew(context.Background(), raw, now) {
		t.Fatal("message seen before restart should be rejected after preload")
	}
}

func TestFingerprintUsesContentPrefix(t *testing.T) {
	filter, _ := newFilter(t)

	long := "this prefix is identical for both messages and exceeds the window"
	a := models.RawMessage{ConversationID: "conv-1", SenderName: "Jane", Content: long + " tail one"}
	b := models.RawMessage{ConversationID: "conv-1", SenderName: "Jane", Content: long + " tail two"}

	// Same prefix within the fingerprint window collides; the second
	// message is dropped. Accepted tradeoff of the design.
	if filter.Fingerprint(a) != filter.Fingerprint(b) {
		t.Fatal("expected identical fingerprints for identical prefixes")
	}
}
