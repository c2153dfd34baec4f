package monitor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xaenox/marketwatch/internal/classifier"
	"github.com/xaenox/marketwatch/internal/conversation"
	"github.com/xaenox/marketwatch/internal/dedup"
	"github.com/xaenox/marketwatch/internal/models"
	"github.com/xaenox/marketwatch/internal/monitor"
	"github.com/xaenox/marketwatch/internal/responder"
	"github.com/xaenox/marketwatch/internal/storage"
	"go.uber.org/zap"
)

type fakeSource struct {
	batches map[string][]models.RawMessage
	errs    map[string]error
	scans   int
}

func (s *fakeSource) Scan(ctx context.Context, account models.Account) ([]models.RawMessage, error) {
	s.scans++
	if err := s.errs[account.Email]; err != nil {
		return nil, err
	}
	return s.batches[account.Email], nil
}

type fakeDispatcher struct {
	sent []string
	err  error
}

func (d *fakeDispatcher) Send(ctx context.Context, conversationID, text string) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, text)
	return nil
}

type fakeNotifier struct {
	escalations int
}

func (n *fakeNotifier) NotifyEscalation(account models.Account, msg *models.Message) error {
	n.escalations++
	return nil
}

type countingGenerator struct {
	reply string
	err   error
	calls int
}

func (g *countingGenerator) Generate(ctx context.Context, msg *models.Message, product *models.Product, history []*models.Message) (string, error) {
	g.calls++
	return g.reply, g.err
}

type fixture struct {
	monitor    *monitor.Monitor
	source     *fakeSource
	dispatcher *fakeDispatcher
	notifier   *fakeNotifier
	generator  *countingGenerator
	store      *storage.MemoryStorage
}

func newFixture(t *testing.T, accounts []string, gen *countingGenerator) *fixture {
	t.Helper()

	logger := zap.NewNop()
	store := storage.NewMemoryStorage()
	for _, email := range accounts {
		store.AddAccount(models.Account{Email: email, Usable: true})
	}

	clf := classifier.NewKeywordClassifier()
	filter := dedup.NewFilter(store, 24*time.Hour, dedup.DefaultContentLength, logger)
	contexts := conversation.NewStore(10)
	engine := responder.NewEngine(gen, responder.NewSubstringResolver(store, logger), contexts, clf, time.Second, 5, logger)

	src := &fakeSource{batches: map[string][]models.RawMessage{}, errs: map[string]error{}}
	dispatcher := &fakeDispatcher{}
	notifier := &fakeNotifier{}

	m := monitor.New(src, dispatcher, notifier, engine, filter, clf, store, store, time.Minute, logger)

	return &fixture{
		monitor:    m,
		source:     src,
		dispatcher: dispatcher,
		notifier:   notifier,
		generator:  gen,
		store:      store,
	}
}

func raw(conversationID, sender, content string) models.RawMessage {
	return models.RawMessage{
		ConversationID: conversationID,
		SenderName:     sender,
		Content:        content,
		DetectedAt:     time.Now(),
	}
}

func TestPartialFailureIsolation(t *testing.T) {
	f := newFixture(t, []string{"a1@example.com", "a2@example.com", "a3@example.com"},
		&countingGenerator{reply: "Sure!"})

	f.source.batches["a1@example.com"] = []models.RawMessage{raw("conv-1", "Jane", "Is it available?")}
	f.source.errs["a2@example.com"] = errors.New("scrape failed")
	f.source.batches["a3@example.com"] = []models.RawMessage{raw("conv-3", "Bob", "Can you do $30?")}

	stats := f.monitor.RunCycle(context.Background())

	if stats.Processed != 2 {
		t.Fatalf("processed = %d, want 2 (accounts 1 and 3)", stats.Processed)
	}
	if stats.ResponsesSent != 2 {
		t.Fatalf("responses_sent = %d, want 2", stats.ResponsesSent)
	}
	if stats.Errors < 1 {
		t.Fatalf("errors = %d, want at least 1 for the failing account", stats.Errors)
	}
	if f.source.scans != 3 {
		t.Fatalf("expected all 3 accounts scanned, got %d", f.source.scans)
	}
}

func TestStaleMessageNeverReachesEngine(t *testing.T) {
	f := newFixture(t, []string{"a1@example.com"}, &countingGenerator{reply: "Sure!"})

	stale := raw("conv-1", "Jane", "Is it available?")
	stale.DetectedAt = time.Now().Add(-30 * time.Hour)
	f.source.batches["a1@example.com"] = []models.RawMessage{stale}

	stats := f.monitor.RunCycle(context.Background())

	if stats.MessagesFound != 1 {
		t.Fatalf("messages_found = %d, want 1", stats.MessagesFound)
	}
	if stats.Processed != 0 {
		t.Fatalf("processed = %d, want 0", stats.Processed)
	}
	if f.generator.calls != 0 {
		t.Fatalf("generator called %d times for a stale message", f.generator.calls)
	}
}

func TestDuplicateNotReprocessedAcrossCycles(t *testing.T) {
	f := newFixture(t, []string{"a1@example.com"}, &countingGenerator{reply: "Sure!"})
	f.source.batches["a1@example.com"] = []models.RawMessage{raw("conv-1", "Jane", "Is it available?")}

	first := f.monitor.RunCycle(context.Background())
	second := f.monitor.RunCycle(context.Background())

	if first.Processed != 1 {
		t.Fatalf("first cycle processed = %d, want 1", first.Processed)
	}
	if second.Processed != 0 {
		t.Fatalf("second cycle processed = %d, want 0 (duplicate)", second.Processed)
	}
	if second.MessagesFound != 1 {
		t.Fatalf("second cycle messages_found = %d, want 1", second.MessagesFound)
	}
}

func TestEscalationIsNotifiedAndNeverSent(t *testing.T) {
	f := newFixture(t, []string{"a1@example.com"}, &countingGenerator{reply: "auto reply"})
	f.source.batches["a1@example.com"] = []models.RawMessage{
		raw("conv-1", "Jane", "This is a scam, I want a refund!"),
	}

	stats := f.monitor.RunCycle(context.Background())

	if stats.Escalations != 1 {
		t.Fatalf("escalations = %d, want 1", stats.Escalations)
	}
	if f.notifier.escalations != 1 {
		t.Fatalf("operator notified %d times, want 1", f.notifier.escalations)
	}
	if len(f.dispatcher.sent) != 0 {
		t.Fatalf("escalated message was auto-replied: %v", f.dispatcher.sent)
	}
	if f.generator.calls != 0 {
		t.Fatalf("generator called %d times for an escalated message", f.generator.calls)
	}
}

func TestSendFailureLeavesStatusAndCountsError(t *testing.T) {
	f := newFixture(t, []string{"a1@example.com"}, &countingGenerator{reply: "Sure!"})
	f.dispatcher.err = errors.New("send failed")
	f.source.batches["a1@example.com"] = []models.RawMessage{raw("conv-1", "Jane", "Is it available?")}

	stats := f.monitor.RunCycle(context.Background())

	if stats.ResponsesSent != 0 {
		t.Fatalf("responses_sent = %d, want 0 after send failure", stats.ResponsesSent)
	}
	if stats.Errors != 1 {
		t.Fatalf("errors = %d, want 1", stats.Errors)
	}

	// The message must not be falsely marked responded
	archived, err := f.store.MessagesByConversation(context.Background(), "conv-1", 10)
	if err != nil {
		t.Fatalf("MessagesByConversation failed: %v", err)
	}
	if len(archived) != 1 {
		t.Fatalf("expected 1 archived message, got %d", len(archived))
	}
	if archived[0].Status == models.StatusResponded {
		t.Fatal("message marked responded even though send failed")
	}
}

func TestFallbackCountedSeparately(t *testing.T) {
	f := newFixture(t, []string{"a1@example.com"}, &countingGenerator{err: errors.New("down")})
	f.source.batches["a1@example.com"] = []models.RawMessage{raw("conv-1", "Jane", "What's your best price?")}

	stats := f.monitor.RunCycle(context.Background())

	if stats.Fallbacks != 1 {
		t.Fatalf("fallbacks = %d, want 1", stats.Fallbacks)
	}
	if stats.AIResponses != 0 {
		t.Fatalf("ai_responses = %d, want 0", stats.AIResponses)
	}
	if stats.ResponsesSent != 1 {
		t.Fatalf("responses_sent = %d, want 1", stats.ResponsesSent)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	f := newFixture(t, []string{"a1@example.com"}, &countingGenerator{reply: "Sure!"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan models.CycleStats, 1)
	go func() {
		done <- f.monitor.Run(ctx)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
