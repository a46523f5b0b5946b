package user

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"

	domain "user-crud-service/internal/domain/user"
	apperrors "user-crud-service/pkg/errors"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Save(ctx context.Context, u domain.User) (domain.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockRepository) SaveAll(ctx context.Context, users []domain.User) ([]domain.User, error) {
	args := m.Called(ctx, users)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id int64) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func setupTestUsecase(t *testing.T, opts ...Option) (*UserUsecase, *MockRepository) {
	mockRepo := new(MockRepository)
	uc := New(mockRepo, zaptest.NewLogger(t), opts...)
	return uc, mockRepo
}

// ==================== ADD USER TESTS ====================

func TestAddUser_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	req := AddUserRequest{Name: "John Doe", Email: "johndoe@xyz.com"}

	mockRepo.On("Save", ctx, domain.User{Name: req.Name, Email: req.Email}).
		Return(domain.User{ID: 1, Name: req.Name, Email: req.Email}, nil)

	resp, err := uc.AddUser(ctx, req)

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, int64(1), resp.ID)
	mockRepo.AssertExpectations(t)
}

func TestAddUser_EmptyFieldsAccepted(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Save", ctx, domain.User{}).Return(domain.User{ID: 9}, nil)

	resp, err := uc.AddUser(ctx, AddUserRequest{})

	assert.NoError(t, err)
	assert.Equal(t, int64(9), resp.ID)
	mockRepo.AssertExpectations(t)
}

func TestAddUser_ValidationError_NameTooLong(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	resp, err := uc.AddUser(context.Background(), AddUserRequest{
		Name:  strings.Repeat("a", domain.MaxFieldLength+1),
		Email: "john@example.com",
	})

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "Name must be at most 255 characters")
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAddUser_StoreError(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	storeErr := apperrors.NewInternalError("failed to save user", errors.New("connection refused"))
	mockRepo.On("Save", ctx, mock.Anything).Return(domain.User{}, storeErr)

	resp, err := uc.AddUser(ctx, AddUserRequest{Name: "John"})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, storeErr)
	mockRepo.AssertExpectations(t)
}

// ==================== ADD USERS TESTS ====================

func TestAddUsers_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	req := AddUsersRequest{Users: []AddUserRequest{
		{Name: "User 1", Email: "user1@xyz.com"},
		{Name: "User 2", Email: "user2@xyz.com"},
	}}

	mockRepo.On("SaveAll", ctx, mock.MatchedBy(func(users []domain.User) bool {
		return len(users) == 2 && users[0].Name == "User 1" && users[1].Email == "user2@xyz.com" && users[0].ID == 0
	})).Return([]domain.User{
		{ID: 1, Name: "User 1", Email: "user1@xyz.com"},
		{ID: 2, Name: "User 2", Email: "user2@xyz.com"},
	}, nil)

	resp, err := uc.AddUsers(ctx, req)

	assert.NoError(t, err)
	assert.Equal(t, 2, resp.Count)
	mockRepo.AssertExpectations(t)
}

func TestAddUsers_EmptyBatch(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	resp, err := uc.AddUsers(context.Background(), AddUsersRequest{})

	assert.NoError(t, err)
	assert.Equal(t, 0, resp.Count)
	mockRepo.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)
}

func TestAddUsers_BatchTooLarge(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t, WithMaxBatchSize(2))

	resp, err := uc.AddUsers(context.Background(), AddUsersRequest{Users: make([]AddUserRequest, 3)})

	assert.Nil(t, resp)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "at most 2 users")
	mockRepo.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)
}

func TestAddUsers_ValidationError_ReportsElement(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	req := AddUsersRequest{Users: []AddUserRequest{
		{Name: "ok"},
		{Email: strings.Repeat("e", domain.MaxFieldLength+1)},
	}}

	resp, err := uc.AddUsers(context.Background(), req)

	assert.Nil(t, resp)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "Users[1].Email must be at most 255 characters")
	mockRepo.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)
}

func TestAddUsers_StoreError(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("SaveAll", ctx, mock.Anything).Return(nil, apperrors.NewInternalError("failed to save users", nil))

	resp, err := uc.AddUsers(ctx, AddUsersRequest{Users: []AddUserRequest{{Name: "a"}}})

	assert.Nil(t, resp)
	assert.Error(t, err)
	mockRepo.AssertExpectations(t)
}

// ==================== LIST / COUNT TESTS ====================

func TestListUsers_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	expectedUsers := []domain.User{
		{ID: 1, Name: "John Doe", Email: "john@example.com"},
		{ID: 2, Name: "Jane Smith", Email: "jane@example.com"},
	}
	mockRepo.On("FindAll", ctx).Return(expectedUsers, nil)

	resp, err := uc.ListUsers(ctx)

	assert.NoError(t, err)
	assert.Len(t, resp.Users, 2)
	assert.Equal(t, User{ID: 1, Name: "John Doe", Email: "john@example.com"}, resp.Users[0])
	mockRepo.AssertExpectations(t)
}

func TestListUsers_EmptyStore(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("FindAll", ctx).Return([]domain.User{}, nil)

	resp, err := uc.ListUsers(ctx)

	assert.NoError(t, err)
	assert.NotNil(t, resp.Users)
	assert.Empty(t, resp.Users)
}

func TestCountUsers(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Count", ctx).Return(int64(5), nil)

	resp, err := uc.CountUsers(ctx)

	assert.NoError(t, err)
	assert.Equal(t, int64(5), resp.Total)
	mockRepo.AssertExpectations(t)
}

func TestCountUsers_StoreError(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Count", ctx).Return(int64(0), errors.New("db down"))

	resp, err := uc.CountUsers(ctx)

	assert.Nil(t, resp)
	assert.EqualError(t, err, "db down")
}

// ==================== GET USER TESTS ====================

func TestGetUser_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	expectedUser := domain.User{ID: 1, Name: "John Doe", Email: "john@example.com"}
	mockRepo.On("FindByID", ctx, int64(1)).Return(expectedUser, nil)

	resp, err := uc.GetUser(ctx, GetUserRequest{ID: 1})

	assert.NoError(t, err)
	assert.Equal(t, &GetUserResponse{ID: 1, Name: "John Doe", Email: "john@example.com"}, resp)
	mockRepo.AssertExpectations(t)
}

func TestGetUser_InvalidID(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	for _, id := range []int64{0, -1} {
		resp, err := uc.GetUser(context.Background(), GetUserRequest{ID: id})

		assert.Error(t, err)
		assert.Nil(t, resp)
		assert.Contains(t, err.Error(), "invalid user id")
	}
	mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestGetUser_NotFound(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("FindByID", ctx, int64(42)).Return(domain.User{}, apperrors.NewNotFoundError("user", "user not found: id=42"))

	resp, err := uc.GetUser(ctx, GetUserRequest{ID: 42})

	assert.Nil(t, resp)
	assert.True(t, apperrors.IsNotFound(err))
	mockRepo.AssertExpectations(t)
}

// ==================== VALIDATION HELPER TESTS ====================

func TestFormatValidationError(t *testing.T) {
	validate := validator.New()

	type TestStruct struct {
		Name  string `validate:"required,max=3"`
		Email string `validate:"required"`
	}

	err := validate.Struct(&TestStruct{})
	formatted := formatValidationError(err)

	assert.Error(t, formatted)
	assert.Contains(t, formatted.Error(), "validation failed")
	assert.Contains(t, formatted.Error(), "Name is required")
	assert.Contains(t, formatted.Error(), "Email is required")
}

func TestFormatValidationError_NonValidationError(t *testing.T) {
	originalErr := errors.New("some other error")
	formatted := formatValidationError(originalErr)

	assert.Equal(t, originalErr, formatted)
}

func TestAddUserRequest_MaxTagsMatchDomainLimit(t *testing.T) {
	want := "max=" + strconv.Itoa(domain.MaxFieldLength)

	typ := reflect.TypeOf(AddUserRequest{})
	for _, name := range []string{"Name", "Email"} {
		field, ok := typ.FieldByName(name)
		assert.True(t, ok)
		assert.Equal(t, want, field.Tag.Get("validate"), name)
	}

	v := validator.New()
	atLimit := strings.Repeat("x", domain.MaxFieldLength)
	assert.NoError(t, v.Struct(AddUserRequest{Name: atLimit, Email: atLimit}))
	assert.Error(t, v.Struct(AddUserRequest{Name: atLimit + "x"}))
}
