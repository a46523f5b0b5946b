package gormdb

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "user-crud-service/internal/domain/user"
	apperrors "user-crud-service/pkg/errors"
)

// DefaultBatchSize is the number of rows sent per INSERT statement by SaveAll.
const DefaultBatchSize = 100

// UserRepo implements the user Repository interface on top of GORM.
// It works with any GORM dialector; the service ships with postgres and sqlite.
type UserRepo struct {
	db        *gorm.DB    // GORM database connection
	log       *zap.Logger // Structured logger for database operations
	batchSize int         // Rows per INSERT in SaveAll
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, log *zap.Logger, batchSize int) *UserRepo {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &UserRepo{db: db, log: log, batchSize: batchSize}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"` // Unique identifier with auto-increment
	Name  string `gorm:"size:255;not null"`        // Absent names are stored as ''
	Email string `gorm:"size:255;not null"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// AutoMigrate creates or updates the users table.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&UserSchema{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}

func toSchema(u domain.User) UserSchema {
	return UserSchema{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toDomain(m UserSchema) domain.User {
	return domain.User{ID: m.ID, Name: m.Name, Email: m.Email}
}

// Save inserts a new user and returns it with the assigned ID.
func (r *UserRepo) Save(ctx context.Context, u domain.User) (domain.User, error) {
	model := toSchema(u)
	model.ID = 0

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to save user in db", zap.Error(err))
		return domain.User{}, apperrors.NewInternalError("failed to save user", err)
	}

	r.log.Debug("user saved in db", zap.Int64("id", model.ID))
	return toDomain(model), nil
}

// SaveAll inserts every user inside one transaction. Either all rows are
// committed or none are.
func (r *UserRepo) SaveAll(ctx context.Context, users []domain.User) ([]domain.User, error) {
	if len(users) == 0 {
		return []domain.User{}, nil
	}

	models := make([]UserSchema, len(users))
	for i, u := range users {
		models[i] = toSchema(u)
		models[i].ID = 0
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&models, r.batchSize).Error
	})
	if err != nil {
		r.log.Error("failed to save users in db", zap.Int("count", len(users)), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to save users", err)
	}

	saved := make([]domain.User, len(models))
	for i, m := range models {
		saved[i] = toDomain(m)
	}

	r.log.Debug("users saved in db", zap.Int("count", len(saved)))
	return saved, nil
}

// Count returns the number of rows in the users table.
func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&UserSchema{}).Count(&total).Error; err != nil {
		r.log.Error("failed to count users in db", zap.Error(err))
		return 0, apperrors.NewInternalError("failed to count users", err)
	}
	return total, nil
}

// FindAll returns every user ordered by ID. An empty table yields an empty, non-nil slice.
func (r *UserRepo) FindAll(ctx context.Context) ([]domain.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Order("id asc").Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to list users", err)
	}

	users := make([]domain.User, len(models))
	for i, m := range models {
		users[i] = toDomain(m)
	}
	return users, nil
}

// FindByID retrieves a user by their unique ID.
func (r *UserRepo) FindByID(ctx context.Context, id int64) (domain.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return domain.User{}, apperrors.NewInternalError("failed to get user", err)
	}

	return toDomain(model), nil
}

// Ping checks that the database is reachable.
func (r *UserRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
