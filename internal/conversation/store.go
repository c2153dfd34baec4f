package conversation

import (
	"sync"

	"github.com/xaenox/marketwatch/internal/models"
)

const DefaultRetention = 10

// Store keeps a bounded recent history per conversation for grounding AI
// replies. Eviction is FIFO: conversational recency matters, not access
// recency.
type Store struct {
	mu        sync.RWMutex
	retention int
	history   map[string][]*models.Message
}

func NewStore(retention int) *Store {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Store{
		retention: retention,
		history:   make(map[string][]*models.Message),
	}
}

func (s *Store) Append(conversationID string, msg *models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := append(s.history[conversationID], msg)
	if len(msgs) > s.retention {
		msgs = msgs[len(msgs)-s.retention:]
	}
	s.history[conversationID] = msgs
}

// History returns a snapshot in insertion order; callers must not assume a
// live view.
func (s *Store) History(conversationID string) []*models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.history[conversationID]
	snapshot := make([]*models.Message, len(msgs))
	copy(snapshot, msgs)
	return snapshot
}
