// internal/models/models.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Post statuses.
const (
	PostStatusDraft       = "draft"
	PostStatusNeedsReview = "needs_review"
	PostStatusPublished   = "published"
)

// User represents a system user
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string         `gorm:"type:varchar(100);unique;not null;index"`
	Email        string         `gorm:"type:varchar(255);unique;not null;index"`
	PasswordHash string         `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
	// Relationships
	Posts []Post `gorm:"foreignKey:UserID"`
}

// Post represents a generated article stored for publication
type Post struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID          uuid.UUID      `gorm:"type:uuid;index"`
	Title           string         `gorm:"type:varchar(255);not null;index"`
	Slug            string         `gorm:"type:varchar(255);unique;not null;index"`
	MetaDescription string         `gorm:"type:varchar(255)"`
	Content         string         `gorm:"type:text;not null"`
	Excerpt         string         `gorm:"type:varchar(255)"`
	FocusKeyword    string         `gorm:"type:varchar(255);index"`
	Provider        string         `gorm:"type:varchar(50);index"`
	Status          string         `gorm:"type:varchar(50);not null;default:'draft';index"` // draft, needs_review, published
	Keywords        datatypes.JSON `gorm:"type:jsonb"`                                      // secondary keywords and tags
	ImagePrompts    datatypes.JSON `gorm:"type:jsonb"`
	Links           datatypes.JSON `gorm:"type:jsonb"` // internal and outbound links
	Report          datatypes.JSON `gorm:"type:jsonb"` // validation report of the generation run
	PublishedAt     time.Time      `gorm:"default:null;index"`
	CreatedAt       time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`
	// Relationships
	Attempts []GenerationAttempt `gorm:"foreignKey:PostID"`
}

// GenerationAttempt records one LLM provider call during a generation run
type GenerationAttempt struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GenerationID string         `gorm:"type:varchar(100);not null;index"`
	PostID       *uuid.UUID     `gorm:"type:uuid;index"`
	Provider     string         `gorm:"type:varchar(50);not null;index"`
	Retry        bool           `gorm:"default:false"`
	Violations   datatypes.JSON `gorm:"type:jsonb"`
	Error        string         `gorm:"type:text"`
	DurationMs   int64          `gorm:"not null"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index"`
}

// KeywordUsage tracks focus keywords already used by published articles,
// which tightens the density limit on later runs
type KeywordUsage struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Keyword   string     `gorm:"type:varchar(255);unique;not null;index"`
	UseCount  int        `gorm:"not null;default:1"`
	PostID    *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}
