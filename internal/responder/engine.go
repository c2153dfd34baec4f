package responder

import (
	"context"
	"strings"
	"time"

	"github.com/xaenox/marketwatch/internal/classifier"
	"github.com/xaenox/marketwatch/internal/conversation"
	"github.com/xaenox/marketwatch/internal/models"
	"go.uber.org/zap"
)

type Action string

const (
	ActionEscalate  Action = "escalate"
	ActionAIRespond Action = "ai_respond"
	ActionFallback  Action = "fallback_respond"
	ActionIgnore    Action = "ignore"
)

// Result is the engine's decision for one message. ResponseText is set for
// the two respond actions and empty otherwise.
type Result struct {
	Action       Action
	ResponseText string
}

const aiSenderName = "ai-assistant"

// Engine decides what to do with each new message: escalate to a human,
// answer with the AI generator, fall back to a template, or ignore.
// Escalation is checked first and cannot be overridden by the AI path;
// safety takes precedence over automation.
type Engine struct {
	generator  Generator
	resolver   ProductResolver
	contexts   *conversation.Store
	classifier classifier.Classifier
	aiTimeout  time.Duration
	maxContext int
	logger     *zap.Logger
}

func NewEngine(generator Generator, resolver ProductResolver, contexts *conversation.Store, clf classifier.Classifier, aiTimeout time.Duration, maxContext int, logger *zap.Logger) *Engine {
	if aiTimeout <= 0 {
		aiTimeout = 30 * time.Second
	}
	if maxContext <= 0 {
		maxContext = 5
	}
	return &Engine{
		generator:  generator,
		resolver:   resolver,
		contexts:   contexts,
		classifier: clf,
		aiTimeout:  aiTimeout,
		maxContext: maxContext,
		logger:     logger,
	}
}

// Process never returns an error for a well-formed Message; malformed input
// is rejected at construction, not here.
func (e *Engine) Process(ctx context.Context, msg *models.Message) Result {
	if strings.TrimSpace(msg.Content) == "" || msg.Type != models.TypeCustomerInquiry {
		if err := msg.MarkIgnored(); err != nil {
			e.logger.Warn("Failed to mark message ignored", zap.Error(err), zap.String("message_id", msg.ID))
		}
		return Result{Action: ActionIgnore}
	}

	if msg.Flags.RequiresHumanAttention {
		if err := msg.MarkEscalated(); err != nil {
			e.logger.Warn("Failed to mark message escalated", zap.Error(err), zap.String("message_id", msg.ID))
		}
		e.logger.Info("Escalating message to human operator",
			zap.String("conversation_id", msg.ConversationID),
			zap.String("sender", msg.SenderName))
		return Result{Action: ActionEscalate}
	}

	if err := msg.MarkProcessing(); err != nil {
		e.logger.Warn("Failed to mark message processing", zap.Error(err), zap.String("message_id", msg.ID))
	}

	text, ok := e.tryGenerate(ctx, msg)
	if ok {
		e.recordExchange(msg, text)
		return Result{Action: ActionAIRespond, ResponseText: text}
	}

	fallback := FallbackResponse(msg)
	e.recordExchange(msg, fallback)
	e.logger.Info("Using fallback response",
		zap.String("conversation_id", msg.ConversationID))
	return Result{Action: ActionFallback, ResponseText: fallback}
}

func (e *Engine) tryGenerate(ctx context.Context, msg *models.Message) (string, bool) {
	genCtx, cancel := context.WithTimeout(ctx, e.aiTimeout)
	defer cancel()

	var product *models.Product
	if e.resolver != nil {
		product = e.resolver.Resolve(genCtx, msg)
	}

	history := e.contexts.History(msg.ConversationID)
	if len(history) > e.maxContext {
		history = history[len(history)-e.maxContext:]
	}

	started := time.Now()
	text, err := e.generator.Generate(genCtx, msg, product, history)
	if err != nil {
		e.logger.Warn("AI generation failed, falling back",
			zap.Error(err),
			zap.String("conversation_id", msg.ConversationID))
		return "", false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	if err := msg.SetResponseTime(time.Since(started).Seconds()); err != nil {
		e.logger.Warn("Failed to record response time", zap.Error(err))
	}

	return text, true
}

// recordExchange appends the inbound message and the generated reply to the
// conversation context so the next AI call sees them.
func (e *Engine) recordExchange(msg *models.Message, reply string) {
	e.contexts.Append(msg.ConversationID, msg)

	outbound, err := models.NewMessage(
		msg.ConversationID,
		aiSenderName,
		msg.AccountEmail,
		reply,
		models.TypeAIResponse,
		time.Now(),
		e.classifier,
	)
	if err != nil {
		e.logger.Warn("Failed to build outbound context message",
			zap.Error(err),
			zap.String("conversation_id", msg.ConversationID))
		return
	}
	e.contexts.Append(msg.ConversationID, outbound)
}
