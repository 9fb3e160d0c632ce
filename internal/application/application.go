package application

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
)

// Application is an assistant's offer to take on a request.
type Application struct {
	ID           int       `json:"applicationId"`
	RequestID    int       `json:"requestId"`
	AssistantID  int       `json:"assistantId"`
	Message      string    `json:"message"`
	ProposedRate float64   `json:"proposedRate"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Offer is an application as the request owner sees it.
type Offer struct {
	Application
	AssistantName string `json:"assistantName"`
}

// Submission is an application as the assistant sees it.
type Submission struct {
	Application
	RequestTitle  string `json:"requestTitle"`
	RequestStatus string `json:"requestStatus"`
}
