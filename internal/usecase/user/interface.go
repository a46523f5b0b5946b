package user

import (
	"context"

	domain "user-crud-service/internal/domain/user"
)

// Usecase defines the interface for user business logic operations.
type Usecase interface {
	AddUser(ctx context.Context, in AddUserRequest) (*AddUserResponse, error)
	AddUsers(ctx context.Context, in AddUsersRequest) (*AddUsersResponse, error)
	ListUsers(ctx context.Context) (*ListUsersResponse, error)
	CountUsers(ctx context.Context) (*CountUsersResponse, error)
	GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error)
}

// Repository defines the user store the usecase depends on.
// Implementations must assign unique IDs on save and report a missing
// record from FindByID as a pkg/errors.NotFoundError.
type Repository interface {
	Save(ctx context.Context, u domain.User) (domain.User, error)            // Persist one user and return it with its ID
	SaveAll(ctx context.Context, users []domain.User) ([]domain.User, error) // Persist a batch, all or nothing
	Count(ctx context.Context) (int64, error)                                // Number of persisted users
	FindAll(ctx context.Context) ([]domain.User, error)                      // Every persisted user
	FindByID(ctx context.Context, id int64) (domain.User, error)             // One user by ID
}
