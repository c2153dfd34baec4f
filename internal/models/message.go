package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/marketwatch/internal/classifier"
)

type MessageType string

const (
	TypeCustomerInquiry MessageType = "customer_inquiry"
	TypeAIResponse      MessageType = "ai_response"
	TypeHumanResponse   MessageType = "human_response"
	TypeSystemMessage   MessageType = "system_message"
)

type MessageStatus string

const (
	StatusNew        MessageStatus = "new"
	StatusProcessing MessageStatus = "processing"
	StatusResponded  MessageStatus = "responded"
	StatusIgnored    MessageStatus = "ignored"
	StatusEscalated  MessageStatus = "escalated"
	StatusError      MessageStatus = "error"
)

// Message is one inbound or outbound marketplace message. Content and the
// derived flags are immutable after construction; only Status and the AI
// metadata change afterwards.
type Message struct {
	ID             string           `json:"id"`
	ConversationID string           `json:"conversation_id"`
	SenderName     string           `json:"sender_name"`
	AccountEmail   string           `json:"account_email"`
	Content        string           `json:"content"`
	Type           MessageType      `json:"type"`
	Status         MessageStatus    `json:"status"`
	Flags          classifier.Flags `json:"flags"`
	AIConfidence   float64          `json:"ai_confidence"`
	ResponseTime   float64          `json:"response_time"`
	CreatedAt      time.Time        `json:"created_at"`
}

// NewMessage validates the raw fields, assigns an ID and classifies the
// content. No caller ever sees a Message whose flags are unset.
func NewMessage(conversationID, senderName, accountEmail, content string, typ MessageType, createdAt time.Time, clf classifier.Classifier) (*Message, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("message requires a conversation id")
	}
	if strings.TrimSpace(senderName) == "" {
		return nil, fmt.Errorf("message requires a sender name")
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("message requires non-empty content")
	}
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return &Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderName:     senderName,
		AccountEmail:   accountEmail,
		Content:        content,
		Type:           typ,
		Status:         StatusNew,
		Flags:          clf.Classify(content),
		CreatedAt:      createdAt,
	}, nil
}

// Age reports how long ago the message was created.
func (m *Message) Age(now time.Time) time.Duration {
	return now.Sub(m.CreatedAt)
}

// PriorityScore is recomputed on demand so the age bonus always reflects the
// current age. Higher means more urgent.
func (m *Message) PriorityScore(now time.Time) int {
	score := 0
	if m.Type == TypeCustomerInquiry {
		score += 10
	}
	if m.Flags.ContainsQuestion {
		score += 5
	}
	if m.Flags.ContainsPriceInquiry || m.Flags.ContainsAvailabilityInquiry {
		score += 3
	}
	if m.Flags.RequiresHumanAttention {
		score += 20
	}

	age := m.Age(now)
	switch {
	case age > 24*time.Hour:
		score += 10
	case age > 12*time.Hour:
		score += 5
	case age > 6*time.Hour:
		score += 2
	}

	return score
}

func (m *Message) IsUrgent(now time.Time) bool {
	return m.Flags.RequiresHumanAttention ||
		m.Age(now) > time.Hour ||
		m.PriorityScore(now) > 25
}

// Status transitions are monotonic: new may move to any other status,
// processing may move to a terminal one, and terminal statuses never change.
func (m *Message) transition(to MessageStatus) error {
	switch m.Status {
	case StatusNew:
	case StatusProcessing:
		if to == StatusProcessing {
			return fmt.Errorf("message %s is already processing", m.ID)
		}
	default:
		return fmt.Errorf("message %s is already %s, cannot move to %s", m.ID, m.Status, to)
	}
	m.Status = to
	return nil
}

func (m *Message) MarkProcessing() error { return m.transition(StatusProcessing) }
func (m *Message) MarkResponded() error  { return m.transition(StatusResponded) }
func (m *Message) MarkIgnored() error    { return m.transition(StatusIgnored) }
func (m *Message) MarkEscalated() error  { return m.transition(StatusEscalated) }
func (m *Message) MarkError() error      { return m.transition(StatusError) }

func (m *Message) SetAIConfidence(confidence float64) error {
	if confidence < 0 || confidence > 1 {
		return fmt.Errorf("ai confidence must be within [0,1], got %f", confidence)
	}
	m.AIConfidence = confidence
	return nil
}

func (m *Message) SetResponseTime(seconds float64) error {
	if seconds < 0 {
		return fmt.Errorf("response time must be non-negative, got %f", seconds)
	}
	m.ResponseTime = seconds
	return nil
}
