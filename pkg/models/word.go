package models

import "time"

// Word represents a vocabulary item supplied by the content provider.
// The scheduler only reads its ID and difficulty hint; the rest is
// display material for the enclosing application.
type Word struct {
	ID            string    `json:"id" db:"id"`
	Word          string    `json:"word" db:"word"`
	Translation   string    `json:"translation" db:"translation"`
	Example       string    `json:"example" db:"example"`
	Topic         string    `json:"topic" db:"topic"`
	Difficulty    int       `json:"difficulty" db:"difficulty"` // 1-5 scale
	Pronunciation string    `json:"pronunciation" db:"pronunciation"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
