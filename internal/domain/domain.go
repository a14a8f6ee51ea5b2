package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization tier attached to a user account. Requests with no
// bearer token are treated as anonymous and carry no Role at all.
type Role string

const (
	RoleAdmin   Role = "admin"
	RolePatient Role = "patient"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RolePatient:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Email string `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Name  string `gorm:"column:name;type:varchar(200)" json:"name"`
	Role  Role   `gorm:"column:role;type:varchar(30);not null;index" json:"role"`

	// Optional: only set when a client registers with a password. Identity
	// verification itself is delegated to the token layer, and the hash
	// never leaves the server.
	PasswordHash string `gorm:"column:password_hash;type:varchar(255)" json:"-"`

	LastSeenAt *time.Time `gorm:"column:last_seen_at" json:"lastSeenAt,omitempty"`
}

func (User) TableName() string {
	return "auth.users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionRead   AuditAction = "read"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
)

type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OccurredAt time.Time `gorm:"autoCreateTime;index"`

	// Who
	ActorEmail string `gorm:"column:actor_email;type:varchar(255);not null;index"`
	ActorRole  Role   `gorm:"column:actor_role;type:varchar(30)"`
	IPAddress  string `gorm:"column:ip_address;type:varchar(45)"` // Supports IPv6

	// What
	Action       AuditAction `gorm:"column:action;type:varchar(20);not null;index"`
	ResourceType string      `gorm:"column:resource_type;type:varchar(50);not null;index"`
	ResourceID   string      `gorm:"column:resource_id;type:varchar(100);index"`

	Changes string `gorm:"column:changes;type:jsonb"`
}

func (AuditLog) TableName() string {
	return "audit.logs"
}

// Claims is the identity carried by a verified bearer token.
type Claims struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
