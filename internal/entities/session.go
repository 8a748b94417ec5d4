package entities

import "time"

// Role identifies the access level granted by the authentication provider.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether the role is one the provider is known to issue.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// UserSummary is an immutable snapshot of the signed-in user. It is
// replaced wholesale on update, never patched field by field.
type UserSummary struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
}

// SessionRecord is one persisted key/value pair of the session triple.
// Values are encrypted before they reach this record.
type SessionRecord struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string
	UpdatedAt time.Time
}

func (SessionRecord) TableName() string {
	return "session_records"
}
