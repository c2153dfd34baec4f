package monitor

import (
	"context"

	"github.com/xaenox/marketwatch/internal/models"
)

// MessageSource yields the raw message candidates detected for one account.
// A scan may fail (network or UI breakage); the monitor absorbs the failure
// and moves on to the next account.
type MessageSource interface {
	Scan(ctx context.Context, account models.Account) ([]models.RawMessage, error)
}

// Dispatcher delivers a reply into a conversation.
type Dispatcher interface {
	Send(ctx context.Context, conversationID, text string) error
}

// Notifier tells a human operator about an escalated message.
type Notifier interface {
	NotifyEscalation(account models.Account, msg *models.Message) error
}

// NopNotifier drops escalation notices. Used when no operator channel is
// configured; escalated messages are still marked and counted.
type NopNotifier struct{}

func (NopNotifier) NotifyEscalation(models.Account, *models.Message) error { return nil }
