package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// DateLayout is the calendar-date format used throughout the announcement
// API. Start and expiration dates carry no time-of-day component.
const DateLayout = "2006-01-02"

// Announcement represents a persisted announcement document. Dates are
// ISO-8601 calendar-date strings so window checks reduce to lexicographic
// comparison; created_at/updated_at are RFC3339 UTC timestamps.
type Announcement struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Message        string             `bson:"message" json:"message"`
	StartDate      *string            `bson:"start_date,omitempty" json:"start_date,omitempty"`
	ExpirationDate string             `bson:"expiration_date" json:"expiration_date"`
	CreatedBy      string             `bson:"created_by" json:"created_by"`
	CreatedAt      string             `bson:"created_at" json:"created_at"`
	UpdatedBy      *string            `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
	UpdatedAt      *string            `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
