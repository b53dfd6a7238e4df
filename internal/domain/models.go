package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Company is a tenant. Its id doubles as the company memory scope id.
type Company struct {
	ID        string         `gorm:"primaryKey;column:company_id" json:"company_id"`
	Name      string         `gorm:"not null;column:name" json:"name"`
	Settings  datatypes.JSON `gorm:"type:jsonb;column:settings" json:"settings,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Company) TableName() string { return "companies" }

type User struct {
	ID        string         `gorm:"primaryKey;column:user_id" json:"user_id"`
	CompanyID *string        `gorm:"index;column:company_id" json:"company_id,omitempty"`
	Name      string         `gorm:"column:name" json:"name"`
	Metadata  datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string { return "users" }

type Session struct {
	ID           string    `gorm:"primaryKey;column:session_id" json:"session_id"`
	UserID       string    `gorm:"index;not null;column:user_id" json:"user_id"`
	CompanyID    *string   `gorm:"index;column:company_id" json:"company_id,omitempty"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
	LastActiveAt time.Time `gorm:"not null;default:now();column:last_active_at" json:"last_active_at"`
}

func (Session) TableName() string { return "sessions" }

// ChatHistory records one question/answer turn. MemoryUpdated flips once the
// deferred memory write for the turn has landed.
type ChatHistory struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID     string         `gorm:"index;not null;column:session_id" json:"session_id"`
	UserID        string         `gorm:"index;not null;column:user_id" json:"user_id"`
	Question      string         `gorm:"type:text;not null;column:question" json:"question"`
	Answer        string         `gorm:"type:text;not null;column:answer" json:"answer"`
	ContextUsed   datatypes.JSON `gorm:"type:jsonb;column:context_used" json:"context_used,omitempty"`
	MemoryUpdated bool           `gorm:"not null;default:false;column:memory_updated" json:"memory_updated"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (ChatHistory) TableName() string { return "chat_history" }

// APIKey stores only the sha256 hex digest of the issued secret.
type APIKey struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	KeyHash    string     `gorm:"uniqueIndex;not null;column:key_hash" json:"-"`
	Label      string     `gorm:"column:label" json:"label"`
	IsAdmin    bool       `gorm:"not null;default:false;column:is_admin" json:"is_admin"`
	CreatedAt  time.Time  `gorm:"not null;default:now()" json:"created_at"`
	LastUsedAt *time.Time `gorm:"column:last_used_at" json:"last_used_at,omitempty"`
}

func (APIKey) TableName() string { return "api_keys" }
