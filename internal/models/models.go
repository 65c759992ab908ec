// internal/models/image.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Image is one stored record: metadata plus the original, untransformed payload.
type Image struct {
	ID          uuid.UUID  `db:"id"`
	Name        string     `db:"name"` // unique, *.png or *.jpg
	Size        int64      `db:"size"`
	Data        []byte     `db:"data"`
	DateCreated time.Time  `db:"date_created"`
	DateUsed    *time.Time `db:"date_used"` // nil until first download
}

// Stats aggregates over all live records. LastUsed is the most recent
// date_used across records, nil when nothing has been downloaded yet.
// The original reported this field from the creation timestamp while
// querying usage; the query semantics win.
type Stats struct {
	Total    int64      `json:"total"`
	Size     int64      `json:"size"`
	LastUsed *time.Time `json:"last_used"`
	Uptime   float64    `json:"uptime"`
}
