package session

import "buyit-client/internal/state"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Snapshot is a copy of the session state safe to hand to the UI.
type Snapshot struct {
	User   *User
	Token  string
	Status state.Status
	Error  string
}

// LoggedIn reports whether the snapshot carries an authenticated user.
func (s Snapshot) LoggedIn() bool {
	return s.Token != "" && s.User != nil
}
