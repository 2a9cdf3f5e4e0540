package ports

import (
	"context"

	"github.com/identity-systems/user-api/internal/core/domain"
)

// UserRepository defines the persistence contract for user records.
//
// Create must be atomic with respect to the name-uniqueness check: two
// concurrent creates with the same name must not both succeed. Backings
// typically enforce this with a unique index; a violation is reported as
// domain.ErrDuplicateName.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByName(ctx context.Context, name string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	FindAll(ctx context.Context) ([]domain.User, error)
	FindPage(ctx context.Context, page, size int) ([]domain.User, error)
}
