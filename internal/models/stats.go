package models

// CycleStats is the outcome of one monitoring cycle. Returned by value from
// each cycle and aggregated by the caller rather than accumulated on shared
// state.
type CycleStats struct {
	MessagesFound int `json:"messages_found"`
	Processed     int `json:"processed"`
	ResponsesSent int `json:"responses_sent"`
	AIResponses   int `json:"ai_responses"`
	Fallbacks     int `json:"fallbacks"`
	Escalations   int `json:"escalations"`
	Ignored       int `json:"ignored"`
	Errors        int `json:"errors"`
}

func (s *CycleStats) Add(other CycleStats) {
	s.MessagesFound += other.MessagesFound
	s.Processed += other.Processed
	s.ResponsesSent += other.ResponsesSent
	s.AIResponses += other.AIResponses
	s.Fallbacks += other.Fallbacks
	s.Escalations += other.Escalations
	s.Ignored += other.Ignored
	s.Errors += other.Errors
}
