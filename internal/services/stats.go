package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/valmiki-reader/internal/models"
	"github.com/fyerfyer/valmiki-reader/internal/repository"
)

// StatsService 统计服务
// 维护章/卷两级的诗节数统计，供目录页和扫描任务使用
type StatsService struct {
	repo   repository.StatsRepository // 统计仓储
	logger *logrus.Logger             // 日志记录器
}

// NewStatsService 创建统计服务实例
func NewStatsService(repo repository.StatsRepository, logger *logrus.Logger) *StatsService {
	if logger == nil {
		logger = logrus.New()
	}
	return &StatsService{
		repo:   repo,
		logger: logger,
	}
}

// RecordSargaCount 写入或更新一章的诗节数
func (s *StatsService) RecordSargaCount(kanda, sarga, slokaCount int) error {
	if kanda <= 0 || sarga <= 0 || slokaCount < 0 {
		return fmt.Errorf("invalid sarga stats %d.%d count %d", kanda, sarga, slokaCount)
	}
	return s.repo.UpsertSargaStats(kanda, sarga, slokaCount)
}

// RecomputeKanda 根据已有的章统计重算一卷的汇总
// 总章数取最大章号，缺章不补：扫描任务负责把洞填上
func (s *StatsService) RecomputeKanda(kanda int) error {
	sargas, err := s.repo.ListSargaStats(kanda)
	if err != nil {
		return fmt.Errorf("failed to list sarga stats: %w", err)
	}
	if len(sargas) == 0 {
		return nil
	}

	totalSargas := 0
	totalSlokas := 0
	for _, stat := range sargas {
		if int(stat.Sarga) > totalSargas {
			totalSargas = int(stat.Sarga)
		}
		totalSlokas += int(stat.SlokaCount)
	}

	if err := s.repo.UpsertKandaStats(kanda, totalSargas, totalSlokas); err != nil {
		return fmt.Errorf("failed to upsert kanda stats: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"kanda":        kanda,
		"total_sargas": totalSargas,
		"total_slokas": totalSlokas,
	}).Info("Kanda stats recomputed")
	return nil
}

// KandaOverview 一卷的统计概览
type KandaOverview struct {
	Kanda  *models.KandaStats   // 卷级汇总，可能为nil
	Sargas []*models.SargaStats // 各章统计，按章号排序
}

// Overview 获取一卷的统计概览
func (s *StatsService) Overview(kanda int) (*KandaOverview, error) {
	if kanda <= 0 {
		return nil, fmt.Errorf("invalid kanda %d", kanda)
	}

	kandaStats, err := s.repo.GetKandaStats(kanda)
	if err != nil {
		return nil, fmt.Errorf("failed to get kanda stats: %w", err)
	}
	sargaStats, err := s.repo.ListSargaStats(kanda)
	if err != nil {
		return nil, fmt.Errorf("failed to list sarga stats: %w", err)
	}

	return &KandaOverview{
		Kanda:  kandaStats,
		Sargas: sargaStats,
	}, nil
}
