package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/marketwatch/internal/models"
	"go.uber.org/zap"
)

const maxExcerptLength = 200

// TelegramNotifier pushes escalated messages to a human operator chat so
// safety-sensitive conversations are never answered automatically.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram notifier: %w", err)
	}

	return &TelegramNotifier{
		api:    api,
		chatID: chatID,
		logger: logger,
	}, nil
}

func (n *TelegramNotifier) NotifyEscalation(account models.Account, msg *models.Message) error {
	excerpt := msg.Content
	if len(excerpt) > maxExcerptLength {
		excerpt = excerpt[:maxExcerptLength] + "…"
	}

	text := fmt.Sprintf("⚠️ *Escalated message*\n*Account:* %s\n*From:* %s\n*Conversation:* %s\n\n%s",
		escapeMarkdown(account.Email),
		escapeMarkdown(msg.SenderName),
		escapeMarkdown(msg.ConversationID),
		escapeMarkdown(excerpt))

	alert := tgbotapi.NewMessage(n.chatID, text)
	alert.ParseMode = "MarkdownV2"

	if _, err := n.api.Send(alert); err != nil {
		n.logger.Error("Failed to send escalation alert",
			zap.Error(err),
			zap.Int64("chat_id", n.chatID))
		return fmt.Errorf("failed to send escalation alert: %w", err)
	}

	return nil
}

// Escape special characters for MarkdownV2
func escapeMarkdown(text string) string {
	specialChars := []string{"_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	escaped := text
	for _, char := range specialChars {
		escaped = strings.ReplaceAll(escaped, char, "\\"+char)
	}
	return escaped
}
