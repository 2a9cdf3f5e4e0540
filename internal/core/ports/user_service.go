package ports

import (
	"context"

	"github.com/identity-systems/user-api/internal/core/domain"
)

// UpdateUserInput carries the mutable fields of a user record. Password is
// optional: when empty the stored hash is left untouched. Role is
// deliberately absent; the general update path never changes it.
type UpdateUserInput struct {
	Name     string
	Age      *int
	Password string
}

// LoginResult is what a successful login or token refresh returns.
type LoginResult struct {
	Token string
	User  *domain.PublicUser
}

// UserService orchestrates registration, authentication and the
// permission-checked operations over user records. Every method that acts
// on behalf of a caller takes the resolved subject name explicitly; an
// empty callerName means anonymous.
type UserService interface {
	Register(ctx context.Context, name, password string) (*domain.PublicUser, error)
	RegisterAdmin(ctx context.Context, name, password, adminCode string) (*domain.PublicUser, error)
	CreateUser(ctx context.Context, name, password string, age *int) (*domain.PublicUser, error)
	Login(ctx context.Context, name, password string) (*LoginResult, error)
	ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error
	RefreshToken(ctx context.Context, callerName string) (*LoginResult, error)
	CurrentUser(ctx context.Context, callerName string) (*domain.PublicUser, error)

	GetUser(ctx context.Context, callerName, id string) (*domain.PublicUser, error)
	UpdateUser(ctx context.Context, callerName, id string, input UpdateUserInput) (*domain.PublicUser, error)
	DeleteUser(ctx context.Context, callerName, id string) error
	ListUsers(ctx context.Context, callerName string) ([]domain.PublicUser, error)
	ListUsersPaged(ctx context.Context, callerName string, page, size int) ([]domain.PublicUser, error)
}
