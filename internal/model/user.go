package model

// User is a row of the identity store's "user" table.
// The table is owned elsewhere; this service only reads it.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// HasEmail reports whether the user can receive reminders
func (u *User) HasEmail() bool {
	return u.Email != ""
}
