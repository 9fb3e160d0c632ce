package rating

import "time"

// Rating is the score a user gives the assistant of a completed request.
type Rating struct {
	ID          int       `json:"ratingId"`
	RequestID   int       `json:"requestId"`
	AssistantID int       `json:"assistantId"`
	UserID      int       `json:"userId"`
	Score       int       `json:"score"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Summary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}
