package model

import "time"

// Account is a demo identity with credentials and a classification quota.
type Account struct {
	Username      string    `json:"username" gorm:"primaryKey;size:64"`
	PasswordHash  string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	UsesAvailable int       `json:"uses_available" gorm:"not null"`
	Active        bool      `json:"active" gorm:"not null;index"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName keeps the table name used by the seed files.
func (Account) TableName() string {
	return "users"
}

// Exhausted reports whether the account has no uses left.
func (a *Account) Exhausted() bool {
	return a.UsesAvailable <= 0
}

// Suspended reports whether the account was deactivated while it still had
// quota, i.e. by an operator rather than by exhaustion.
func (a *Account) Suspended() bool {
	return !a.Active && !a.Exhausted()
}
