// spur/sources/psql/models/conversation.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is one chat session. UserID is the widget's free-text
// visitor handle, not a foreign key; there is no users table.
type Conversation struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:varchar(255);not null;index"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null;default:'New Chat'"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Conversation) TableName() string {
	return "conversations"
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
