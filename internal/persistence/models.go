package persistence

import "time"

// User represents a registered account.
type User struct {
	ID           string
	DisplayName  string
	Surname      string
	Email        string
	PasswordHash string
	Group        string
	Phone        string
	CreatedAt    time.Time
}

// Event represents a listed event. Date is kept as the client supplied string
// so listings sort the same way the original data was entered.
type Event struct {
	ID          string
	Name        string
	Date        string
	Place       string
	Image       string
	Price       string
	Description string
}

// EventPatch carries the columns to change on an event. Nil fields are left
// untouched.
type EventPatch struct {
	Name        *string
	Date        *string
	Place       *string
	Image       *string
	Price       *string
	Description *string
}

// Empty reports whether the patch changes nothing.
func (p EventPatch) Empty() bool {
	return p.Name == nil && p.Date == nil && p.Place == nil &&
		p.Image == nil && p.Price == nil && p.Description == nil
}

// Subscription links a user to an event.
type Subscription struct {
	UserID    string
	EventID   string
	CreatedAt time.Time
}
