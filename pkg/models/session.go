package models

import "time"

// SessionGoals defines what a study session is trying to accomplish.
type SessionGoals struct {
	NewItemTarget int           `json:"new_item_target"`
	ReviewTarget  int           `json:"review_target"`
	TimeBudget    time.Duration `json:"time_budget"`
}

// WantsItems reports whether the goals require at least one item to be
// available when the session starts.
func (g SessionGoals) WantsItems() bool {
	return g.NewItemTarget > 0 || g.ReviewTarget > 0
}

// SessionSummary is the plain data record returned when a session
// completes. How it is displayed or stored long-term is up to the caller.
type SessionSummary struct {
	SessionID       string        `json:"session_id"`
	LearnerID       string        `json:"learner_id"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         time.Time     `json:"end_time"`
	NewItemsDone    int           `json:"new_items_done"`
	ReviewsDone     int           `json:"reviews_done"`
	AvgGrade        float64       `json:"avg_grade"`
	AvgResponseTime time.Duration `json:"avg_response_time"`
}

// TotalAnswered returns the number of graded responses in the session.
func (s SessionSummary) TotalAnswered() int {
	return s.NewItemsDone + s.ReviewsDone
}
