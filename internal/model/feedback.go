// internal/model/feedback.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Feedback is a free-form message from a user to the library staff.
type Feedback struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

func (f *Feedback) Clone() *Feedback {
	c := *f
	return &c
}

type FindFeedback struct {
	ID     *uuid.UUID
	UserID *uuid.UUID
}
