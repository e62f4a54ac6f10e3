// internal/feedback/service.go
package feedback

import (
	"context"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
)

const MaxRating = 5

// Submission is a feedback message. A zero rating means unrated.
type Submission struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
	Rating  int    `json:"rating"`
}

type Service interface {
	Submit(ctx context.Context, actor model.Actor, sub Submission) (*model.Feedback, error)
	// List returns all feedback, newest first. Staff only.
	List(ctx context.Context, actor model.Actor) ([]*model.Feedback, error)
	ListMine(ctx context.Context, actor model.Actor) ([]*model.Feedback, error)
}
