package models

import (
	"strings"
	"time"
)

// UsernameCooldown is the minimum gap between username changes.
const UsernameCooldown = 14 * 24 * time.Hour

type User struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email,omitempty"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	PasswordHash       string     `json:"-"`
	IsActive           bool       `json:"-"`
	LastUsernameChange *time.Time `json:"-"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
	DateJoined         time.Time  `json:"date_joined"`
	UpdatedAt          time.Time  `json:"-"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// CanChangeUsername reports whether the cooldown since the last username
// change has elapsed. A user who never changed their username may always
// change it.
func (u *User) CanChangeUsername() bool {
	return u.DaysUntilUsernameChange() == 0
}

// DaysUntilUsernameChange returns 0 when the username may be changed now,
// otherwise the number of whole days remaining. Elapsed time is truncated to
// whole days, so a change attempted at exactly 14 days succeeds.
func (u *User) DaysUntilUsernameChange() int {
	if u.LastUsernameChange == nil {
		return 0
	}
	elapsed := int(time.Since(*u.LastUsernameChange).Hours() / 24)
	cooldownDays := int(UsernameCooldown.Hours() / 24)
	if elapsed >= cooldownDays {
		return 0
	}
	return cooldownDays - elapsed
}

// ValidUsername reports whether the name uses only letters, digits, and
// underscores.
func ValidUsername(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
