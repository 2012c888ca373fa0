package application

import "time"

// Principal represents the verified caller, as decoded from a session token.
type Principal struct {
	UserID    string
	Email     string
	IsAdmin   bool
	ExpiresAt time.Time
}

// User is a registered account. The password digest never leaves the
// credential store except through UserCredentials.
type User struct {
	ID          string
	DisplayName string
	Surname     string
	Email       string
	Group       string
	Phone       string
	CreatedAt   time.Time
}

// UserCredentials pairs a user with the stored password digest.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// RegisterParams carries the registration form. All fields are required.
type RegisterParams struct {
	DisplayName string
	Surname     string
	Email       string
	Password    string
	Group       string
	Phone       string
}

// LoginParams carries login credentials.
type LoginParams struct {
	Email    string
	Password string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User  User
	Token IssuedToken
}

// Identity is the server-side answer to "who am I". IsAdmin is re-derived
// from the current allow-list, unlike the claim embedded in the token.
type Identity struct {
	UserID    string
	Email     string
	IsAdmin   bool
	ExpiresAt time.Time
}

// Event is a listed event.
type Event struct {
	ID          string
	Name        string
	Date        string
	Place       string
	Image       string
	Price       string
	Description string
}

// EventInput carries the fields for a new event. Name, Date, Place and Image
// are required; Price and Description default to empty.
type EventInput struct {
	Name        string
	Date        string
	Place       string
	Image       string
	Price       string
	Description string
}

// EventPatch lists the fields to change. Nil fields are left untouched.
type EventPatch struct {
	Name        *string
	Date        *string
	Place       *string
	Image       *string
	Price       *string
	Description *string
}

// IsEmpty reports whether the patch changes nothing.
func (p EventPatch) IsEmpty() bool {
	return p.Name == nil && p.Date == nil && p.Place == nil &&
		p.Image == nil && p.Price == nil && p.Description == nil
}
