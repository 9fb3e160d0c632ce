package assistant

import (
	"time"

	"github.com/wichananm65/carehub-backend/internal/rating"
)

// Profile is the caregiver side of an assistant account.
type Profile struct {
	UserID          int       `json:"userId"`
	Bio             string    `json:"bio"`
	Skills          []string  `json:"skills"`
	HourlyRate      float64   `json:"hourlyRate"`
	ExperienceYears int       `json:"experienceYears"`
	LocationID      *int      `json:"locationId"`
	Available       bool      `json:"available"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Card is a profile as shown in the public directory.
type Card struct {
	Profile
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	AvatarURL *string        `json:"avatarUrl"`
	Rating    rating.Summary `json:"rating"`
}

// Detail is the public profile page of one assistant.
type Detail struct {
	Card
	RecentRatings []rating.Rating `json:"recentRatings"`
}

// Filter narrows the assistant directory.
type Filter struct {
	LocationID int
	Available  *bool
}
