// spur/sources/psql/models/message.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sender values stored on a message row.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

type Message struct {
	ID             uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID    `json:"conversation_id" gorm:"type:uuid;not null;index"`
	Conversation   Conversation `json:"-" gorm:"foreignKey:ConversationID;references:ID;constraint:OnDelete:CASCADE"`
	Sender         string       `json:"sender" gorm:"type:varchar(16);not null"`
	Content        string       `json:"content" gorm:"type:text;not null"`
	CreatedAt      time.Time    `json:"created_at" gorm:"autoCreateTime"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
