package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/valmiki-reader/internal/models"
	"github.com/fyerfyer/valmiki-reader/internal/repository"
)

// ProgressService 进度服务
// 负责书签和每种阅读语言的最后阅读位置
type ProgressService struct {
	repo   repository.ProgressRepository // 进度仓储
	logger *logrus.Logger                // 日志记录器
}

// NewProgressService 创建进度服务实例
func NewProgressService(repo repository.ProgressRepository, logger *logrus.Logger) *ProgressService {
	if logger == nil {
		logger = logrus.New()
	}
	return &ProgressService{
		repo:   repo,
		logger: logger,
	}
}

// ToggleBookmark 切换一个诗节的书签状态，返回切换后的状态
func (s *ProgressService) ToggleBookmark(kanda, sarga, sloka int) (bool, error) {
	if kanda <= 0 || sarga <= 0 || sloka <= 0 {
		return false, fmt.Errorf("invalid bookmark ref %d.%d.%d", kanda, sarga, sloka)
	}

	bookmarked, err := s.repo.ToggleBookmark(kanda, sarga, sloka)
	if err != nil {
		return false, fmt.Errorf("failed to toggle bookmark: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"kanda":      kanda,
		"sarga":      sarga,
		"sloka":      sloka,
		"bookmarked": bookmarked,
	}).Info("Bookmark toggled")
	return bookmarked, nil
}

// IsBookmarked 查询一个诗节的书签状态
func (s *ProgressService) IsBookmarked(kanda, sarga, sloka int) (bool, error) {
	return s.repo.IsBookmarked(kanda, sarga, sloka)
}

// Bookmarks 列出全部书签，按 (kanda, sarga, sloka) 排序
func (s *ProgressService) Bookmarks() ([]*models.Bookmark, error) {
	return s.repo.ListBookmarks()
}

// MarkRead 记录某阅读语言的最后阅读位置
func (s *ProgressService) MarkRead(language string, kanda, sarga, sloka int) error {
	if !ValidLanguage(language) {
		return fmt.Errorf("%w: %q", models.ErrInvalidLanguage, language)
	}
	if kanda <= 0 || sarga <= 0 || sloka <= 0 {
		return fmt.Errorf("invalid reading position %d.%d.%d", kanda, sarga, sloka)
	}
	return s.repo.SetReadingPosition(language, kanda, sarga, sloka)
}

// LastRead 获取某阅读语言的最后阅读位置，没有历史时返回nil
func (s *ProgressService) LastRead(language string) (*models.ReadingPosition, error) {
	if !ValidLanguage(language) {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidLanguage, language)
	}
	return s.repo.GetReadingPosition(language)
}

// ReadingPositions 列出各阅读语言的最后阅读位置（首页数据）
func (s *ProgressService) ReadingPositions() ([]*models.ReadingPosition, error) {
	return s.repo.ListReadingPositions()
}
