package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-crud-service/internal/domain/user"
	apperrors "user-crud-service/pkg/errors"
	"user-crud-service/pkg/logger"
)

// DefaultMaxBatchSize caps the number of users accepted by AddUsers.
const DefaultMaxBatchSize = 1000

// UserUsecase implements the business logic for user management operations.
// It provides a clean separation between the transport layer and data layer.
type UserUsecase struct {
	repo         Repository          // Repository for data access
	log          *zap.Logger         // Logger for structured logging
	validate     *validator.Validate // Validator for request validation
	maxBatchSize int                 // Upper bound for AddUsers
}

var _ Usecase = (*UserUsecase)(nil)

// Option customizes a UserUsecase.
type Option func(*UserUsecase)

// WithMaxBatchSize overrides DefaultMaxBatchSize. Non-positive values are ignored.
func WithMaxBatchSize(n int) Option {
	return func(uc *UserUsecase) {
		if n > 0 {
			uc.maxBatchSize = n
		}
	}
}

// New creates a new instance of UserUsecase with the provided repository and logger.
func New(r Repository, log *zap.Logger, opts ...Option) *UserUsecase {
	uc := &UserUsecase{
		repo:         r,
		log:          log,
		validate:     validator.New(),
		maxBatchSize: DefaultMaxBatchSize,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// formatValidationError converts validator.ValidationErrors into a human-readable error message.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := fieldPath(e)
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", field, e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", field))
		}
	}
	return apperrors.NewValidationError("", strings.Join(messages, ", "))
}

// fieldPath drops the root struct name from the namespace, so batch errors read "Users[2].Name".
func fieldPath(e validator.FieldError) string {
	ns := e.StructNamespace()
	if _, rest, ok := strings.Cut(ns, "."); ok && rest != "" {
		return rest
	}
	return e.Field()
}

// AddUser validates the request and persists a new user, returning its ID.
func (uc *UserUsecase) AddUser(ctx context.Context, in AddUserRequest) (*AddUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("adding user", zap.String("name", in.Name), zap.String("email", in.Email))

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	saved, err := uc.repo.Save(ctx, domain.User{
		Name:  in.Name,
		Email: in.Email,
	})
	if err != nil {
		log.Error("failed to add user", zap.Error(err))
		return nil, err
	}

	return &AddUserResponse{ID: saved.ID}, nil
}

// AddUsers validates every element and persists the batch in one transaction.
// An empty batch is a no-op that reports zero.
func (uc *UserUsecase) AddUsers(ctx context.Context, in AddUsersRequest) (*AddUsersResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("adding users", zap.Int("count", len(in.Users)))

	if len(in.Users) > uc.maxBatchSize {
		log.Warn("batch too large", zap.Int("count", len(in.Users)), zap.Int("max", uc.maxBatchSize))
		return nil, apperrors.NewValidationError("users", fmt.Sprintf("batch must contain at most %d users", uc.maxBatchSize))
	}

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	if len(in.Users) == 0 {
		return &AddUsersResponse{Count: 0}, nil
	}

	users := make([]domain.User, len(in.Users))
	for i, u := range in.Users {
		users[i] = domain.User{
			Name:  u.Name,
			Email: u.Email,
		}
	}

	saved, err := uc.repo.SaveAll(ctx, users)
	if err != nil {
		log.Error("failed to add users", zap.Int("count", len(users)), zap.Error(err))
		return nil, err
	}

	return &AddUsersResponse{Count: len(saved)}, nil
}

// ListUsers returns every persisted user.
func (uc *UserUsecase) ListUsers(ctx context.Context) (*ListUsersResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("listing users")

	domainUsers, err := uc.repo.FindAll(ctx)
	if err != nil {
		log.Error("failed to list users", zap.Error(err))
		return nil, err
	}

	users := make([]User, len(domainUsers))
	for i, du := range domainUsers {
		users[i] = User{
			ID:    du.ID,
			Name:  du.Name,
			Email: du.Email,
		}
	}

	return &ListUsersResponse{Users: users}, nil
}

// CountUsers returns the number of persisted users.
func (uc *UserUsecase) CountUsers(ctx context.Context) (*CountUsersResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	total, err := uc.repo.Count(ctx)
	if err != nil {
		log.Error("failed to count users", zap.Error(err))
		return nil, err
	}

	log.Debug("counted users", zap.Int64("total", total))
	return &CountUsersResponse{Total: total}, nil
}

// GetUser retrieves a user by ID. IDs below 1 are never assigned and are rejected up front.
func (uc *UserUsecase) GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	if in.ID <= 0 {
		log.Warn("get user validation failed", zap.Int64("id", in.ID), zap.String("reason", "invalid id"))
		return nil, apperrors.NewValidationError("id", "invalid user id")
	}

	u, err := uc.repo.FindByID(ctx, in.ID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			log.Warn("user not found", zap.Int64("id", in.ID))
		} else {
			log.Error("failed to get user", zap.Int64("id", in.ID), zap.Error(err))
		}
		return nil, err
	}

	return &GetUserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}, nil
}
