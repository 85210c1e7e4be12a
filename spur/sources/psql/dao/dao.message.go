// spur/sources/psql/dao/dao.message.go
package dao

import (
	"context"

	"github.com/AasheeshLikePanner/spur/spur/sources/psql/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageDAO struct {
	DB *gorm.DB
}

func NewMessageDAO(db *gorm.DB) *MessageDAO {
	return &MessageDAO{DB: db}
}

func (dao *MessageDAO) SaveMessage(ctx context.Context, conversationID uuid.UUID, sender, content string) (*models.Message, error) {
	msg := models.Message{
		ConversationID: conversationID,
		Sender:         sender,
		Content:        content,
	}
	if err := dao.DB.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListMessagesByConversation returns the full transcript oldest-first.
// An unknown conversation id yields an empty slice, not an error.
func (dao *MessageDAO) ListMessagesByConversation(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	var msgs []models.Message
	err := dao.DB.WithContext(ctx).Where("conversation_id = ?", conversationID).Order("created_at asc").Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}
