package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fyerfyer/valmiki-reader/internal/database"
	"github.com/fyerfyer/valmiki-reader/internal/models"
)

// slokaRepository 诗节仓储实现
type slokaRepository struct {
	db *gorm.DB // 数据库连接
}

// NewSlokaRepository 创建诗节仓储实例
func NewSlokaRepository() SlokaRepository {
	return &slokaRepository{db: database.MustDB()}
}

// NewSlokaRepositoryWithDB 使用指定的数据库连接创建诗节仓储实例
func NewSlokaRepositoryWithDB(db *gorm.DB) SlokaRepository {
	if db == nil {
		db = database.MustDB()
	}
	return &slokaRepository{db: db}
}

// ReplaceSarga 替换一章的全部诗节记录
// 删除和插入放在同一个事务里，避免读到半替换状态
func (r *slokaRepository) ReplaceSarga(kanda, sarga int, script string, rows []*models.SlokaRow) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("kanda = ? AND sarga = ? AND script = ?", kanda, sarga, script).
			Delete(&models.SlokaRow{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete old sarga rows: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(rows).Error; err != nil {
			return fmt.Errorf("failed to insert sarga rows: %w", err)
		}
		return nil
	})
}

// GetSarga 获取一章的全部诗节记录，按位置排序
func (r *slokaRepository) GetSarga(kanda, sarga int, script string) ([]*models.SlokaRow, error) {
	var rows []*models.SlokaRow
	err := r.db.Where("kanda = ? AND sarga = ? AND script = ?", kanda, sarga, script).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rows, nil
}

// CountSarga 统计一章已持久化的诗节数
func (r *slokaRepository) CountSarga(kanda, sarga int, script string) (int64, error) {
	var count int64
	err := r.db.Model(&models.SlokaRow{}).
		Where("kanda = ? AND sarga = ? AND script = ?", kanda, sarga, script).
		Count(&count).Error
	return count, err
}

// DeleteSarga 删除一章的全部诗节记录
func (r *slokaRepository) DeleteSarga(kanda, sarga int, script string) error {
	return r.db.Where("kanda = ? AND sarga = ? AND script = ?", kanda, sarga, script).
		Delete(&models.SlokaRow{}).Error
}
