package kafka

import "time"

type EventType string

const (
	FeedbackSubmitted EventType = "feedback_submitted"
)

// Event - уведомление о новой записи. Текст отзыва и автор в событие не попадают.
type Event struct {
	Type       EventType `json:"type"`
	FeedbackID string    `json:"feedback_id"`
	Rating     int       `json:"rating"`
	Visibility string    `json:"visibility"`
	Timestamp  time.Time `json:"timestamp"`
}
