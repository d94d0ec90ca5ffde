package models

import (
	"errors"
	"regexp"
	"time"
)

// User is the read-only view of an association member.
type User struct {
	ID              int        `json:"id" db:"id"`
	Username        string     `json:"username" db:"username"`
	Email           string     `json:"email" db:"email"`
	FirstName       string     `json:"first_name" db:"first_name"`
	LastName        string     `json:"last_name" db:"last_name"`
	SubscribedUntil *time.Time `json:"subscribed_until,omitempty" db:"subscribed_until"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

var (
	// Email validation regex
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// IsSubscriber reports whether the user holds a subscription still running at now.
func (u *User) IsSubscriber(now time.Time) bool {
	return u.SubscribedUntil != nil && u.SubscribedUntil.After(now)
}

// FullName returns "First Last", falling back to the username.
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}

// Validate validates the user data
func (u *User) Validate() error {
	if u.Username == "" {
		return errors.New("username is required")
	}

	if len(u.Username) > 150 {
		return errors.New("username must be less than 150 characters")
	}

	return validateEmail(u.Email)
}

// validateEmail validates an email address
func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}

	if len(email) > 255 {
		return errors.New("email must be less than 255 characters")
	}

	if !emailRegex.MatchString(email) {
		return errors.New("email format is invalid")
	}

	return nil
}
