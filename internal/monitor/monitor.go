package monitor

import (
	"context"
	"time"

	"github.com/xaenox/marketwatch/internal/classifier"
	"github.com/xaenox/marketwatch/internal/dedup"
	"github.com/xaenox/marketwatch/internal/models"
	"github.com/xaenox/marketwatch/internal/responder"
	"github.com/xaenox/marketwatch/internal/storage"
	"go.uber.org/zap"
)

// Monitor runs the scan -> filter -> classify -> decide -> dispatch cycle
// across all monitored accounts. One cycle runs to completion before the
// next starts; there is no parallel fan-out across accounts.
type Monitor struct {
	source     MessageSource
	dispatcher Dispatcher
	notifier   Notifier
	engine     *responder.Engine
	filter     *dedup.Filter
	classifier classifier.Classifier
	accounts   storage.AccountStore
	archive    storage.MessageStore
	interval   time.Duration
	logger     *zap.Logger

	now func() time.Time
}

func New(source MessageSource, dispatcher Dispatcher, notifier Notifier, engine *responder.Engine, filter *dedup.Filter, clf classifier.Classifier, accounts storage.AccountStore, archive storage.MessageStore, interval time.Duration, logger *zap.Logger) *Monitor {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Monitor{
		source:     source,
		dispatcher: dispatcher,
		notifier:   notifier,
		engine:     engine,
		filter:     filter,
		classifier: clf,
		accounts:   accounts,
		archive:    archive,
		interval:   interval,
		logger:     logger,
		now:        time.Now,
	}
}

// Run polls at a fixed interval until the context is cancelled. The loop
// stops between accounts, not mid-scan. Returns the aggregated stats.
func (m *Monitor) Run(ctx context.Context) models.CycleStats {
	m.logger.Info("Starting monitoring loop", zap.Duration("interval", m.interval))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	var total models.CycleStats
	total.Add(m.RunCycle(ctx))

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Monitoring loop stopped",
				zap.Int("messages_found", total.MessagesFound),
				zap.Int("responses_sent", total.ResponsesSent),
				zap.Int("escalations", total.Escalations),
				zap.Int("errors", total.Errors))
			return total
		case <-ticker.C:
			total.Add(m.RunCycle(ctx))
		}
	}
}

// RunCycle performs one pass over all usable accounts. A failure on one
// account is counted and logged but does not abort the cycle for the rest.
func (m *Monitor) RunCycle(ctx context.Context) models.CycleStats {
	var stats models.CycleStats

	accounts, err := m.accounts.ListUsableAccounts(ctx)
	if err != nil {
		m.logger.Error("Failed to list accounts", zap.Error(err))
		stats.Errors++
		return stats
	}

	for _, account := range accounts {
		// Cooperative stop point between accounts
		select {
		case <-ctx.Done():
			return stats
		default:
		}

		m.processAccount(ctx, account, &stats)
	}

	m.logger.Info("Cycle complete",
		zap.Int("messages_found", stats.MessagesFound),
		zap.Int("processed", stats.Processed),
		zap.Int("responses_sent", stats.ResponsesSent),
		zap.Int("escalations", stats.Escalations),
		zap.Int("errors", stats.Errors))

	return stats
}

func (m *Monitor) processAccount(ctx context.Context, account models.Account, stats *models.CycleStats) {
	raws, err := m.source.Scan(ctx, account)
	if err != nil {
		m.logger.Warn("Scan failed, skipping account",
			zap.Error(err),
			zap.String("account", account.Email))
		stats.Errors++
		return
	}

	for _, raw := range raws {
		stats.MessagesFound++

		if !m.filter.IsNew(ctx, raw, m.now()) {
			continue
		}

		msg, err := models.NewMessage(
			raw.ConversationID,
			raw.SenderName,
			account.Email,
			raw.Content,
			models.TypeCustomerInquiry,
			raw.DetectedAt,
			m.classifier,
		)
		if err != nil {
			m.logger.Warn("Dropping malformed candidate",
				zap.Error(err),
				zap.String("conversation_id", raw.ConversationID))
			stats.Errors++
			continue
		}

		m.processMessage(ctx, account, msg, stats)
	}
}

func (m *Monitor) processMessage(ctx context.Context, account models.Account, msg *models.Message, stats *models.CycleStats) {
	result := m.engine.Process(ctx, msg)
	stats.Processed++

	switch result.Action {
	case responder.ActionEscalate:
		stats.Escalations++
		if err := m.notifier.NotifyEscalation(account, msg); err != nil {
			m.logger.Error("Failed to notify operator of escalation",
				zap.Error(err),
				zap.String("conversation_id", msg.ConversationID))
			stats.Errors++
		}

	case responder.ActionAIRespond, responder.ActionFallback:
		if err := m.dispatcher.Send(ctx, msg.ConversationID, result.ResponseText); err != nil {
			// Leave the status as-is; the reply was not delivered
			m.logger.Error("Failed to send response",
				zap.Error(err),
				zap.String("conversation_id", msg.ConversationID))
			stats.Errors++
		} else {
			if err := msg.MarkResponded(); err != nil {
				m.logger.Warn("Failed to mark message responded", zap.Error(err), zap.String("message_id", msg.ID))
			}
			stats.ResponsesSent++
			if result.Action == responder.ActionAIRespond {
				stats.AIResponses++
			} else {
				stats.Fallbacks++
			}
		}

	case responder.ActionIgnore:
		stats.Ignored++
	}

	if err := m.archive.SaveMessage(ctx, msg); err != nil {
		m.logger.Error("Failed to archive message",
			zap.Error(err),
			zap.String("message_id", msg.ID))
	}

	if msg.IsUrgent(m.now()) {
		m.logger.Info("Urgent message handled",
			zap.String("conversation_id", msg.ConversationID),
			zap.Int("priority", msg.PriorityScore(m.now())),
			zap.String("action", string(result.Action)))
	}
}
