package models

import "time"

// RawMessage is a message candidate as it comes off the message source,
// before deduplication and classification.
type RawMessage struct {
	ConversationID string    `json:"conversation_id"`
	SenderName     string    `json:"sender_name"`
	Content        string    `json:"content"`
	DetectedAt     time.Time `json:"detected_at"`
}

// Account is one monitored marketplace account. The monitor consumes
// accounts read-only; their lifecycle is owned elsewhere.
type Account struct {
	Email         string    `json:"email"`
	Usable        bool      `json:"usable"`
	DailyMessages int       `json:"daily_messages"`
	LastActivity  time.Time `json:"last_activity"`
}

// CanSend reports whether the account is usable and under its daily
// message limit. A limit of zero means unlimited.
func (a Account) CanSend(limit int) bool {
	if !a.Usable {
		return false
	}
	return limit <= 0 || a.DailyMessages < limit
}

// Product is listing context handed to the response generator, read-only.
type Product struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Condition   string  `json:"condition"`
}
