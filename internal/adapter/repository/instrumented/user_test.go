package instrumented

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domain "user-crud-service/internal/domain/user"
	apperrors "user-crud-service/pkg/errors"
	"user-crud-service/pkg/metrics"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Save(ctx context.Context, u domain.User) (domain.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockRepository) SaveAll(ctx context.Context, users []domain.User) ([]domain.User, error) {
	args := m.Called(ctx, users)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *mockRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *mockRepository) FindByID(ctx context.Context, id int64) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func TestUserRepository_PassesThroughAndObserves(t *testing.T) {
	ctx := context.Background()
	prom := metrics.NewProm(prometheus.NewRegistry())
	next := new(mockRepository)
	repo := NewUserRepository(next, prom)

	next.On("Save", ctx, domain.User{Name: "a"}).Return(domain.User{ID: 1, Name: "a"}, nil)
	next.On("SaveAll", ctx, mock.Anything).Return(nil, errors.New("connection reset"))
	next.On("Count", ctx).Return(int64(7), nil)
	next.On("FindAll", ctx).Return([]domain.User{{ID: 1}}, nil)
	next.On("FindByID", ctx, int64(9)).Return(domain.User{}, apperrors.NewNotFoundError("user", "user not found"))

	saved, err := repo.Save(ctx, domain.User{Name: "a"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.ID)

	batch, err := repo.SaveAll(ctx, []domain.User{{Name: "b"}})
	assert.Nil(t, batch)
	assert.EqualError(t, err, "connection reset")

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = repo.FindByID(ctx, 9)
	assert.True(t, apperrors.IsNotFound(err))

	next.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.StoreErrors.WithLabelValues(OpSaveAll, "connection")))
	assert.Equal(t, 1, testutil.CollectAndCount(prom.StoreErrors))
	assert.Equal(t, 5, testutil.CollectAndCount(prom.StoreOpDuration))
}
