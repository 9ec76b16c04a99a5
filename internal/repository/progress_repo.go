package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fyerfyer/valmiki-reader/internal/database"
	"github.com/fyerfyer/valmiki-reader/internal/models"
)

// progressRepository 阅读进度仓储实现
type progressRepository struct {
	db *gorm.DB // 数据库连接
}

// NewProgressRepository 创建阅读进度仓储实例
func NewProgressRepository() ProgressRepository {
	return &progressRepository{db: database.MustDB()}
}

// NewProgressRepositoryWithDB 使用指定的数据库连接创建阅读进度仓储实例
func NewProgressRepositoryWithDB(db *gorm.DB) ProgressRepository {
	if db == nil {
		db = database.MustDB()
	}
	return &progressRepository{db: db}
}

// ToggleBookmark 切换书签状态，返回切换后的状态
func (r *progressRepository) ToggleBookmark(kanda, sarga, sloka int) (bool, error) {
	var bookmarked bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Bookmark
		err := tx.Where("kanda = ? AND sarga = ? AND sloka = ?", kanda, sarga, sloka).
			First(&existing).Error
		if err == nil {
			bookmarked = false
			return tx.Delete(&existing).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		bookmarked = true
		return tx.Create(&models.Bookmark{
			Kanda: uint(kanda),
			Sarga: uint(sarga),
			Sloka: uint(sloka),
		}).Error
	})
	return bookmarked, err
}

// IsBookmarked 查询书签状态
func (r *progressRepository) IsBookmarked(kanda, sarga, sloka int) (bool, error) {
	var count int64
	err := r.db.Model(&models.Bookmark{}).
		Where("kanda = ? AND sarga = ? AND sloka = ?", kanda, sarga, sloka).
		Count(&count).Error
	return count > 0, err
}

// ListBookmarks 列出全部书签，按 (kanda, sarga, sloka) 排序
func (r *progressRepository) ListBookmarks() ([]*models.Bookmark, error) {
	var bookmarks []*models.Bookmark
	err := r.db.Order("kanda ASC, sarga ASC, sloka ASC").Find(&bookmarks).Error
	return bookmarks, err
}

// SetReadingPosition 记录某阅读语言的最后阅读位置
func (r *progressRepository) SetReadingPosition(language string, kanda, sarga, sloka int) error {
	position := &models.ReadingPosition{
		Language: language,
		Kanda:    uint(kanda),
		Sarga:    uint(sarga),
		Sloka:    uint(sloka),
	}
	// 同一语言只保留一条记录，冲突时整体覆盖
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "language"}},
		UpdateAll: true,
	}).Create(position).Error
}

// GetReadingPosition 获取某阅读语言的最后阅读位置
func (r *progressRepository) GetReadingPosition(language string) (*models.ReadingPosition, error) {
	var position models.ReadingPosition
	err := r.db.Where("language = ?", language).First(&position).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &position, nil
}

// ListReadingPositions 列出各阅读语言的最后阅读位置
func (r *progressRepository) ListReadingPositions() ([]*models.ReadingPosition, error) {
	var positions []*models.ReadingPosition
	err := r.db.Order("language ASC").Find(&positions).Error
	return positions, err
}
