// internal/feedback/implementation.go
package feedback

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/apperr"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/journal"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/notification"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/store"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/telemetry"
)

const actionSubmitted = "submitted"

type service struct {
	feedback store.Feedback
	notify   notification.Emitter
	activity *journal.Recorder
	logger   *zap.Logger
	now      func() time.Time
	inst     *telemetry.Instrument
}

type Option func(*service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *service) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithRecorder(r *journal.Recorder) Option {
	return func(s *service) { s.activity = r }
}

func NewService(st store.Store, notify notification.Emitter, opts ...Option) Service {
	s := &service{
		feedback: st.Feedback(),
		notify:   notify,
		logger:   zap.NewNop(),
		now:      time.Now,
		inst:     telemetry.NewInstrument("feedback"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Submit(ctx context.Context, actor model.Actor, sub Submission) (_ *model.Feedback, err error) {
	ctx, end := s.inst.Start(ctx, "feedback.submit", attribute.Int("feedback.rating", sub.Rating))
	defer end(&err)

	sub.Subject = strings.TrimSpace(sub.Subject)
	sub.Message = strings.TrimSpace(sub.Message)
	switch {
	case sub.Message == "":
		return nil, apperr.Invalid("message is required")
	case sub.Rating < 0 || sub.Rating > MaxRating:
		return nil, apperr.Invalid("rating must be between 0 and %d", MaxRating)
	}

	fb := &model.Feedback{
		ID:        uuid.New(),
		UserID:    actor.UserID,
		Subject:   sub.Subject,
		Message:   sub.Message,
		Rating:    sub.Rating,
		CreatedAt: s.now().UTC(),
	}
	if err := s.feedback.Insert(ctx, fb); err != nil {
		return nil, apperr.Internal(err, "save feedback")
	}

	s.logger.Info("Feedback submitted", zap.Stringer("feedback_id", fb.ID), zap.Stringer("user_id", actor.UserID))
	s.activity.Record(ctx, journal.EntityFeedback, fb.ID, actionSubmitted, actor.UserID, nil)
	s.notify.EmitToStaff(ctx, notification.Message{
		Type:       model.NotifyFeedback,
		Title:      "New feedback",
		Body:       feedbackBody(fb),
		RelatedID:  fb.ID,
		ActionLink: "/feedback",
	})
	return fb, nil
}

func (s *service) List(ctx context.Context, actor model.Actor) (_ []*model.Feedback, err error) {
	ctx, end := s.inst.Start(ctx, "feedback.list")
	defer end(&err)

	if !actor.IsStaff() {
		return nil, apperr.Forbidden("only staff can read all feedback")
	}
	return s.find(ctx, model.FindFeedback{})
}

func (s *service) ListMine(ctx context.Context, actor model.Actor) (_ []*model.Feedback, err error) {
	ctx, end := s.inst.Start(ctx, "feedback.list_mine", attribute.String("user.id", actor.UserID.String()))
	defer end(&err)

	return s.find(ctx, model.FindFeedback{UserID: &actor.UserID})
}

func (s *service) find(ctx context.Context, filter model.FindFeedback) ([]*model.Feedback, error) {
	list, err := s.feedback.Find(ctx, filter, model.Desc(model.SortByCreatedAt))
	if err != nil {
		return nil, apperr.Internal(err, "list feedback")
	}
	if list == nil {
		list = []*model.Feedback{}
	}
	return list, nil
}

func feedbackBody(fb *model.Feedback) string {
	body := fb.Message
	if fb.Subject != "" {
		body = fb.Subject + ": " + body
	}
	if fb.Rating > 0 {
		body += fmt.Sprintf(" (rated %d/%d)", fb.Rating, MaxRating)
	}
	return body
}
