package user

// MaxFieldLength is the longest name or email the users table can hold.
const MaxFieldLength = 255

// User represents a user entity in the system.
// Two users are the same record iff all three fields are equal.
type User struct {
	ID    int64  // ID is assigned by the store on creation and never changes
	Name  string // Name is the full name of the user, optional
	Email string // Email is the user's email address, optional and not validated
}

// IsPersisted reports whether the store has assigned an ID.
func (u User) IsPersisted() bool {
	return u.ID > 0
}
