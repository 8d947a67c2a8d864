package account

import (
	"time"
)

// Account is a registered user. The email is the identity; there is no surrogate id.
type Account struct {
	Email        string    `gorm:"column:email;primaryKey;type:text" bson:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null;type:text" bson:"password"`
	CreatedAt    time.Time `gorm:"column:created_at" bson:"created_at"`
}

// TableName returns the table name for the Account entity.
func (Account) TableName() string {
	return "users"
}

// Assertion is the verified content of an identity token.
type Assertion struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the assertion's expiry lies before now.
func (a *Assertion) Expired(now time.Time) bool {
	return a.ExpiresAt.Before(now)
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Email     string
}
