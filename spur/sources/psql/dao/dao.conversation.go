// spur/sources/psql/dao/dao.conversation.go
package dao

import (
	"context"

	"github.com/AasheeshLikePanner/spur/spur/sources/psql/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationDAO struct {
	DB *gorm.DB
}

func NewConversationDAO(db *gorm.DB) *ConversationDAO {
	return &ConversationDAO{DB: db}
}

func (dao *ConversationDAO) CreateConversation(ctx context.Context, userID, name string) (*models.Conversation, error) {
	conv := models.Conversation{
		UserID: userID,
		Name:   name,
	}
	if err := dao.DB.WithContext(ctx).Create(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetConversationByID returns (nil, nil) when no row exists.
func (dao *ConversationDAO) GetConversationByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	err := dao.DB.WithContext(ctx).First(&conv, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (dao *ConversationDAO) ListConversationsByUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := dao.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}

func (dao *ConversationDAO) UpdateConversationName(ctx context.Context, id uuid.UUID, name string) error {
	return dao.DB.WithContext(ctx).Model(&models.Conversation{}).Where("id = ?", id).Update("name", name).Error
}
