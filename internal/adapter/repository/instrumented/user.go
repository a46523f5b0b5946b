// Package instrumented records Prometheus metrics around a user.Repository.
package instrumented

import (
	"context"

	domain "user-crud-service/internal/domain/user"
	"user-crud-service/internal/usecase/user"
	"user-crud-service/pkg/metrics"
)

// Store operation labels.
const (
	OpSave     = "save"
	OpSaveAll  = "save_all"
	OpCount    = "count"
	OpFindAll  = "find_all"
	OpFindByID = "find_by_id"
)

// UserRepository wraps a user.Repository and observes every call.
type UserRepository struct {
	next user.Repository
	prom *metrics.Prom
}

var _ user.Repository = (*UserRepository)(nil)

// NewUserRepository returns next wrapped with store metrics.
func NewUserRepository(next user.Repository, prom *metrics.Prom) *UserRepository {
	return &UserRepository{next: next, prom: prom}
}

func (r *UserRepository) Save(ctx context.Context, u domain.User) (saved domain.User, err error) {
	err = r.prom.ObserveStore(OpSave, func() error {
		saved, err = r.next.Save(ctx, u)
		return err
	})
	return saved, err
}

func (r *UserRepository) SaveAll(ctx context.Context, users []domain.User) (saved []domain.User, err error) {
	err = r.prom.ObserveStore(OpSaveAll, func() error {
		saved, err = r.next.SaveAll(ctx, users)
		return err
	})
	return saved, err
}

func (r *UserRepository) Count(ctx context.Context) (total int64, err error) {
	err = r.prom.ObserveStore(OpCount, func() error {
		total, err = r.next.Count(ctx)
		return err
	})
	return total, err
}

func (r *UserRepository) FindAll(ctx context.Context) (users []domain.User, err error) {
	err = r.prom.ObserveStore(OpFindAll, func() error {
		users, err = r.next.FindAll(ctx)
		return err
	})
	return users, err
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (u domain.User, err error) {
	err = r.prom.ObserveStore(OpFindByID, func() error {
		u, err = r.next.FindByID(ctx, id)
		return err
	})
	return u, err
}
