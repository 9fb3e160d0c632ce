package location

import "time"

// Location is a service area requests and assistants are attached to.
type Location struct {
	ID        int       `json:"locationId"`
	Name      string    `json:"name"`
	Province  string    `json:"province"`
	CreatedAt time.Time `json:"createdAt"`
}
