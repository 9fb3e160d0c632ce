package request

import "time"

type Status string

const (
	StatusOpen      Status = "open"
	StatusAssigned  Status = "assigned"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known request status.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusAssigned, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CareTypes are the kinds of care a request can ask for.
var CareTypes = []string{
	"elderly",
	"child",
	"disability",
	"medical",
	"companionship",
	"housekeeping",
}

// Request is a care job posted by a user.
type Request struct {
	ID          int        `json:"requestId"`
	UserID      int        `json:"userId"`
	LocationID  int        `json:"locationId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CareType    string     `json:"careType"`
	StartDate   *time.Time `json:"startDate"`
	Hours       int        `json:"hours"`
	Budget      float64    `json:"budget"`
	Status      Status     `json:"status"`
	AssistantID *int       `json:"assistantId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Listing is a request as served by the read endpoints, with its description
// broken into details.
type Listing struct {
	Request
	Details Details `json:"details"`
}

func newListing(r Request) Listing {
	return Listing{Request: r, Details: ParseDescription(r.Description)}
}

// Filter narrows the public request listing. An empty Status lists every
// status.
type Filter struct {
	Status     Status
	LocationID int
	CareType   string
	Query      string
	Limit      int
	Offset     int
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

func (f Filter) normalized() Filter {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
