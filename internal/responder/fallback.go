package responder

import (
	"github.com/xaenox/marketwatch/internal/models"
)

// Deterministic templates used when the AI generator fails, times out or
// returns nothing. Selection is driven by the message's derived flags.
const (
	fallbackPrice = "Thanks for asking about the price! The price listed is what I'm asking, " +
		"but feel free to make a reasonable offer and I'll consider it."
	fallbackAvailability = "Yes, the item is still available! Let me know if you'd like " +
		"more details or want to arrange a pickup."
	fallbackQuestion = "Thanks for your question! Let me check and get back to you " +
		"with the details shortly."
	fallbackGeneric = "Thanks for your message! I'll get back to you as soon as I can."
)

// FallbackResponse picks the template matching the message's flags.
// Always returns non-empty text.
func FallbackResponse(msg *models.Message) string {
	switch {
	case msg.Flags.ContainsPriceInquiry:
		return fallbackPrice
	case msg.Flags.ContainsAvailabilityInquiry:
		return fallbackAvailability
	case msg.Flags.ContainsQuestion:
		return fallbackQuestion
	default:
		return fallbackGeneric
	}
}
