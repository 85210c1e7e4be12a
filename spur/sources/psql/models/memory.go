// spur/sources/psql/models/memory.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Memory is one extracted fact about a user. Rows are append-only and
// keyed by the same free-text user handle conversations use, so facts
// follow the user across sessions. Nothing deduplicates them.
type Memory struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:varchar(255);not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Memory) TableName() string {
	return "memories"
}

func (m *Memory) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
