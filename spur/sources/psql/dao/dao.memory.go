// spur/sources/psql/dao/dao.memory.go
package dao

import (
	"context"

	"github.com/AasheeshLikePanner/spur/spur/sources/psql/models"

	"gorm.io/gorm"
)

type MemoryDAO struct {
	DB *gorm.DB
}

func NewMemoryDAO(db *gorm.DB) *MemoryDAO {
	return &MemoryDAO{DB: db}
}

// SaveMemories appends one row per fact. Duplicates are stored as-is;
// there is no dedup pass.
func (dao *MemoryDAO) SaveMemories(ctx context.Context, userID string, facts []string) ([]models.Memory, error) {
	if len(facts) == 0 {
		return nil, nil
	}
	rows := make([]models.Memory, 0, len(facts))
	for _, fact := range facts {
		rows = append(rows, models.Memory{
			UserID:  userID,
			Content: fact,
		})
	}
	if err := dao.DB.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (dao *MemoryDAO) ListMemoriesByUser(ctx context.Context, userID string) ([]models.Memory, error) {
	var rows []models.Memory
	err := dao.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at asc").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
