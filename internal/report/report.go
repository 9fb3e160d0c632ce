// Package report exports marketplace data for administrators.
package report

import (
	"context"
	"time"
)

// RequestRow is one line of the requests spreadsheet.
type RequestRow struct {
	ID           int
	Title        string
	CareType     string
	Status       string
	Owner        string
	OwnerEmail   string
	Location     string
	Assistant    string
	Hours        int
	Budget       float64
	Applications int
	Pending      int
	CreatedAt    time.Time
}

type Source interface {
	RequestRows(ctx context.Context) ([]RequestRow, error)
}
