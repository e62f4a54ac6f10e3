// internal/membership/implementation.go
package membership

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/apperr"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/journal"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/store"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/telemetry"
)

// service implements the Service interface.
type service struct {
	users       store.Users
	rateLimiter *rate.Limiter
	activity    *journal.Recorder
	logger      *zap.Logger
	now         func() time.Time
	inst        *telemetry.Instrument
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

// WithRateLimit replaces the default limit on registration and login attempts.
// The limiter is shared by every caller.
func WithRateLimit(perMinute, burst int) Option {
	return func(s *service) {
		s.rateLimiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
	}
}

// NewService creates a new membership service instance.
func NewService(st store.Store, opts ...Option) Service {
	s := &service{
		users:       st.Users(),
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute/DefaultRateLimitPerMinute), DefaultRateLimitBurst),
		logger:      zap.NewNop(),
		now:         time.Now,
		inst:        telemetry.NewInstrument("membership"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a student or external account.
func (s *service) Register(ctx context.Context, reg Registration) (_ *model.User, err error) {
	ctx, end := s.inst.Start(ctx, "membership.register", attribute.String("user.role", string(reg.Role)))
	defer end(&err)

	if !s.rateLimiter.Allow() {
		return nil, rateLimited()
	}
	reg.normalize()
	if err := reg.validate(); err != nil {
		return nil, err
	}

	_, err = s.users.FindOne(ctx, model.FindUser{Email: &reg.Email})
	switch {
	case err == nil:
		return nil, emailTaken()
	case !errors.Is(err, store.ErrNotFound):
		return nil, apperr.Internal(err, "check email")
	}

	hash, salt, err := hashPassword(reg.Password)
	if err != nil {
		return nil, apperr.Internal(err, "hash password")
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           uuid.New(),
		Name:         reg.Name,
		Email:        reg.Email,
		Role:         reg.Role,
		PasswordHash: hash,
		PasswordSalt: salt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, emailTaken()
		}
		return nil, apperr.Internal(err, "create user")
	}

	s.logger.Info("User registered", zap.Stringer("user_id", user.ID), zap.Stringer("role", user.Role))
	s.activity.Record(ctx, journal.EntityUser, user.ID, actionRegistered, user.ID, user.Summary())
	return user, nil
}

func (s *service) Authenticate(ctx context.Context, email, password string) (_ *model.User, err error) {
	ctx, end := s.inst.Start(ctx, "membership.authenticate")
	defer end(&err)

	if !s.rateLimiter.Allow() {
		return nil, rateLimited()
	}

	email = normalizeEmail(email)
	user, err := s.users.FindOne(ctx, model.FindUser{Email: &email})
	if errors.Is(err, store.ErrNotFound) {
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, apperr.Internal(err, "load user")
	}

	ok, err := verifyPassword(password, user.PasswordSalt, user.PasswordHash)
	if err != nil {
		return nil, apperr.Internal(err, "verify password")
	}
	if !ok {
		s.logger.Debug("Password mismatch", zap.Stringer("user_id", user.ID))
		return nil, invalidCredentials()
	}
	return user, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (_ *model.User, err error) {
	ctx, end := s.inst.Start(ctx, "membership.get_user", attribute.String("user.id", id.String()))
	defer end(&err)

	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load user")
	}
	return user, nil
}

// ListUsers returns every account sorted by name.
func (s *service) ListUsers(ctx context.Context, actor model.Actor) (_ []*model.User, err error) {
	ctx, end := s.inst.Start(ctx, "membership.list_users")
	defer end(&err)

	if !actor.IsStaff() {
		return nil, apperr.Forbidden("only staff can list users")
	}
	users, err := s.users.Find(ctx, model.FindUser{}, model.Asc(model.SortByName))
	if err != nil {
		return nil, apperr.Internal(err, "list users")
	}
	if users == nil {
		users = []*model.User{}
	}
	return users, nil
}

func (s *service) UpdateRole(ctx context.Context, actor model.Actor, id uuid.UUID, role model.Role) (_ *model.User, err error) {
	ctx, end := s.inst.Start(ctx, "membership.update_role",
		attribute.String("user.id", id.String()),
		attribute.String("user.role", string(role)),
	)
	defer end(&err)

	if actor.Role != model.RoleAdmin {
		return nil, apperr.Forbidden("only admins can change roles")
	}
	if !role.Valid() {
		return nil, apperr.Invalid("unknown role %q", role)
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}

	change := roleChanged{From: user.Role, To: role}
	user.Role = role
	user.UpdatedAt = s.now().UTC()
	if err := s.users.Save(ctx, user); err != nil {
		return nil, apperr.Internal(err, "save user")
	}

	s.logger.Info("User role changed",
		zap.Stringer("user_id", user.ID),
		zap.Stringer("from", change.From),
		zap.Stringer("to", change.To),
		zap.Stringer("admin_id", actor.UserID),
	)
	s.activity.Record(ctx, journal.EntityUser, user.ID, actionRoleChanged, actor.UserID, change)
	return user, nil
}

func rateLimited() error {
	return apperr.LimitExceeded("too many attempts, try again later").WithCode(apperr.CodeRateLimited)
}

func emailTaken() error {
	return apperr.Conflict("an account with this email already exists").WithCode(apperr.CodeDuplicate)
}

func invalidCredentials() error {
	return apperr.Unauthorized("invalid email or password")
}
