package cached

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-crud-service/internal/adapter/cache"
	domain "user-crud-service/internal/domain/user"
	"user-crud-service/internal/usecase/user"
)

// CachedUserRepository implements user.Repository with caching support.
// It wraps a persistent repository (DB) and a cache implementation.
// Cache failures are logged and never surface to the caller.
type CachedUserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

var _ user.Repository = (*CachedUserRepository)(nil)

// NewCachedUserRepository creates a new instance of CachedUserRepository.
func NewCachedUserRepository(dbRepo user.Repository, cache cache.UserCache, log *zap.Logger) *CachedUserRepository {
	return &CachedUserRepository{
		dbRepo: dbRepo,
		cache:  cache,
		log:    log,
	}
}

// Save persists the user and writes it through to the cache.
func (r *CachedUserRepository) Save(ctx context.Context, u domain.User) (domain.User, error) {
	saved, err := r.dbRepo.Save(ctx, u)
	if err != nil {
		return domain.User{}, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, saved); err != nil {
			r.log.Warn("failed to cache saved user", zap.Int64("id", saved.ID), zap.Error(err))
		}
	}
	return saved, nil
}

// SaveAll persists the batch and writes every saved user through to the cache.
func (r *CachedUserRepository) SaveAll(ctx context.Context, users []domain.User) ([]domain.User, error) {
	saved, err := r.dbRepo.SaveAll(ctx, users)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.SetMany(ctx, saved); err != nil {
			r.log.Warn("failed to cache saved users", zap.Int("count", len(saved)), zap.Error(err))
		}
	}
	return saved, nil
}

// Count delegates to the DB repository.
func (r *CachedUserRepository) Count(ctx context.Context) (int64, error) {
	return r.dbRepo.Count(ctx)
}

// FindAll delegates to the DB repository.
func (r *CachedUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	return r.dbRepo.FindAll(ctx)
}

// FindByID retrieves a user by ID using Cache-Aside pattern.
func (r *CachedUserRepository) FindByID(ctx context.Context, id int64) (domain.User, error) {
	if u, ok := r.fromCache(ctx, id); ok {
		return u, nil
	}

	// Cache miss or cache disabled - use single-flight to prevent stampede
	result, err, _ := r.group.Do(strconv.FormatInt(id, 10), func() (any, error) {
		// Another caller may have filled the cache while we waited
		if u, ok := r.fromCache(ctx, id); ok {
			return u, nil
		}

		u, err := r.dbRepo.FindByID(ctx, id)
		if err != nil {
			return domain.User{}, err
		}

		if r.cache != nil {
			if err := r.cache.Set(ctx, u); err != nil {
				r.log.Warn("failed to cache user", zap.Int64("id", id), zap.Error(err))
			}
		}
		return u, nil
	})
	if err != nil {
		return domain.User{}, err
	}

	return result.(domain.User), nil
}

func (r *CachedUserRepository) fromCache(ctx context.Context, id int64) (domain.User, bool) {
	if r.cache == nil {
		return domain.User{}, false
	}

	cachedUser, err := r.cache.Get(ctx, id)
	if err != nil {
		r.log.Warn("cache get error, falling back to database", zap.Int64("id", id), zap.Error(err))
		return domain.User{}, false
	}
	if cachedUser == nil {
		return domain.User{}, false
	}
	return *cachedUser, true
}
