package user

// AddUserRequest represents the request payload for creating a new user.
// The max tags must equal domain.MaxFieldLength.
type AddUserRequest struct {
	Name  string `validate:"max=255"`
	Email string `validate:"max=255"`
}

// AddUserResponse represents the response payload after creating a user.
type AddUserResponse struct {
	ID int64
}

// AddUsersRequest represents the request payload for creating users in one batch.
type AddUsersRequest struct {
	Users []AddUserRequest `validate:"dive"`
}

// AddUsersResponse carries the number of users persisted by the batch.
type AddUsersResponse struct {
	Count int
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID int64
}

// GetUserResponse represents the response payload for user details.
type GetUserResponse struct {
	ID    int64
	Name  string
	Email string
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users []User
}

// CountUsersResponse carries the number of persisted users.
type CountUsersResponse struct {
	Total int64
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID    int64
	Name  string
	Email string
}
