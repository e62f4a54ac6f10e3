// internal/membership/service.go
package membership

import (
	"context"

	"github.com/google/uuid"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
)

// Service defines the interface for the membership service.
type Service interface {
	Register(ctx context.Context, reg Registration) (*model.User, error)
	// Authenticate returns the user behind the credentials. Unknown emails and
	// wrong passwords fail the same way.
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context, actor model.Actor) ([]*model.User, error)
	UpdateRole(ctx context.Context, actor model.Actor, id uuid.UUID, role model.Role) (*model.User, error)
}
