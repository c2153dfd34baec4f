package classifier

import (
	"strings"
)

// Flags are the content-derived properties of a buyer message. They are
// computed once when the message is constructed and never recomputed.
type Flags struct {
	ContainsQuestion            bool `json:"contains_question"`
	ContainsPriceInquiry        bool `json:"contains_price_inquiry"`
	ContainsAvailabilityInquiry bool `json:"contains_availability_inquiry"`
	RequiresHumanAttention      bool `json:"requires_human_attention"`
}

type Classifier interface {
	Classify(content string) Flags
}

// KeywordClassifier flags content by matching fixed keyword sets against the
// lowercased text. No NLP, no stemming.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var questionKeywords = []string{
	"?", "what", "when", "where", "how", "why", "which",
	"can you", "could you", "do you", "is it", "is this", "are you",
}

var priceKeywords = []string{
	"price", "cost", "how much", "cheap", "expensive", "discount",
	"best price", "lowest", "negotiable", "offer", "$",
}

var availabilityKeywords = []string{
	"available", "availability", "still have", "still for sale",
	"in stock", "sold", "on hold", "pick up", "pickup", "when can i",
}

// Words that route a message to a human operator instead of the auto-reply
// path. Matched on whole words so that e.g. "sue" does not fire inside
// "issue" (which is in the set on its own).
var escalationKeywords = map[string]struct{}{
	"scam": {}, "fraud": {}, "police": {}, "lawyer": {}, "refund": {},
	"broken": {}, "damaged": {}, "complaint": {}, "problem": {}, "issue": {},
	"return": {}, "court": {}, "sue": {}, "report": {},
}

func (c *KeywordClassifier) Classify(content string) Flags {
	lowered := strings.ToLower(content)

	return Flags{
		ContainsQuestion:            containsAny(lowered, questionKeywords),
		ContainsPriceInquiry:        containsAny(lowered, priceKeywords),
		ContainsAvailabilityInquiry: containsAny(lowered, availabilityKeywords),
		RequiresHumanAttention:      containsEscalationWord(lowered),
	}
}

func containsAny(content string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(content, keyword) {
			return true
		}
	}
	return false
}

func containsEscalationWord(content string) bool {
	for _, word := range strings.Fields(content) {
		word = strings.Trim(word, ".,!?;:'\"()")
		if _, ok := escalationKeywords[word]; ok {
			return true
		}
	}
	return false
}
