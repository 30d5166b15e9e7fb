package model

import (
	"time"
)

type User struct {
	ID               string     `db:"id"`
	Provider         *string    `db:"provider"`         // OAuth provider name, nil for password accounts
	ProviderUserID   *string    `db:"provider_user_id"` // subject id at the provider
	Gmail            string     `db:"gmail"`
	Username         string     `db:"username"`
	PasswordHash     *string    `db:"password_hash"` // nil for OAuth-only accounts
	Name             *string    `db:"name"`
	Picture          *string    `db:"picture"`
	EmailConfirmedAt *time.Time `db:"email_confirmed_at"`
	Lockout
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

func (u *User) EmailConfirmed() bool {
	return u.EmailConfirmedAt != nil
}

func (u *User) IsOAuth() bool {
	return u.Provider != nil && *u.Provider != ""
}
