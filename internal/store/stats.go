// internal/store/stats.go
//
// Dashboard numbers derived from the saved records.

package store

import "github.com/kingrea/daybreak/internal/task"

// TodayStats summarizes the current day for the dashboard.
type TodayStats struct {
	Date    string
	HasPlan bool
	HasLog  bool
	Total   int
	Done    int
}

// TodayStats inspects today's plan and log.
func (s *Store) TodayStats() TodayStats {
	stats := TodayStats{Date: s.Today()}
	stats.HasLog = s.LogExists(stats.Date)
	plan, err := s.LoadPlan(stats.Date)
	if err != nil {
		return stats
	}
	stats.HasPlan = true
	stats.Total = task.Count(plan.Jobs)
	stats.Done = task.CountDone(plan.Jobs, plan.Done)
	return stats
}

// Streak counts consecutive days ending today with a saved log. A day
// without a log today does not break the streak until tomorrow; counting
// then starts from yesterday.
func (s *Store) Streak() int {
	day := s.now()
	if !s.LogExists(DateKey(day)) {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for s.LogExists(DateKey(day)) {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
