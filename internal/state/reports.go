package state

import "github.com/MikeSquared-Agency/Audit5S/internal/scoring"

// Dashboard recomputes the headline figures from the current collections.
func (s *State) Dashboard() scoring.Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return scoring.Summarize(s.records, s.actions)
}

func (s *State) Consolidated() scoring.Consolidated {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return scoring.Consolidate(s.records, s.config.Questions)
}
