package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fyerfyer/valmiki-reader/internal/database"
	"github.com/fyerfyer/valmiki-reader/internal/models"
)

// statsRepository 统计仓储实现
type statsRepository struct {
	db *gorm.DB // 数据库连接
}

// NewStatsRepository 创建统计仓储实例
func NewStatsRepository() StatsRepository {
	return &statsRepository{db: database.MustDB()}
}

// NewStatsRepositoryWithDB 使用指定的数据库连接创建统计仓储实例
func NewStatsRepositoryWithDB(db *gorm.DB) StatsRepository {
	if db == nil {
		db = database.MustDB()
	}
	return &statsRepository{db: db}
}

// UpsertSargaStats 写入或更新一章的诗节数
func (r *statsRepository) UpsertSargaStats(kanda, sarga, slokaCount int) error {
	stats := &models.SargaStats{
		Kanda:      uint(kanda),
		Sarga:      uint(sarga),
		SlokaCount: uint(slokaCount),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kanda"}, {Name: "sarga"}},
		UpdateAll: true,
	}).Create(stats).Error
}

// GetSargaStats 获取一章的诗节数统计
func (r *statsRepository) GetSargaStats(kanda, sarga int) (*models.SargaStats, error) {
	var stats models.SargaStats
	err := r.db.Where("kanda = ? AND sarga = ?", kanda, sarga).First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stats, nil
}

// ListSargaStats 列出一卷的全部章统计，按章号排序
func (r *statsRepository) ListSargaStats(kanda int) ([]*models.SargaStats, error) {
	var stats []*models.SargaStats
	err := r.db.Where("kanda = ?", kanda).Order("sarga ASC").Find(&stats).Error
	return stats, err
}

// UpsertKandaStats 写入或更新一卷的汇总统计
func (r *statsRepository) UpsertKandaStats(kanda, totalSargas, totalSlokas int) error {
	stats := &models.KandaStats{
		Kanda:       uint(kanda),
		TotalSargas: uint(totalSargas),
		TotalSlokas: uint(totalSlokas),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kanda"}},
		UpdateAll: true,
	}).Create(stats).Error
}

// GetKandaStats 获取一卷的汇总统计
func (r *statsRepository) GetKandaStats(kanda int) (*models.KandaStats, error) {
	var stats models.KandaStats
	err := r.db.Where("kanda = ?", kanda).First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stats, nil
}
