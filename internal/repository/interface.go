package repository

import "github.com/fyerfyer/valmiki-reader/internal/models"

// SlokaRepository 诗节仓储接口
// 负责解析结果的持久化和检索，一章的记录整体替换
type SlokaRepository interface {
	// ReplaceSarga 替换一章的全部诗节记录
	ReplaceSarga(kanda, sarga int, script string, rows []*models.SlokaRow) error

	// GetSarga 获取一章的全部诗节记录，按位置排序
	GetSarga(kanda, sarga int, script string) ([]*models.SlokaRow, error)

	// CountSarga 统计一章已持久化的诗节数
	CountSarga(kanda, sarga int, script string) (int64, error)

	// DeleteSarga 删除一章的全部诗节记录
	DeleteSarga(kanda, sarga int, script string) error
}

// ProgressRepository 阅读进度仓储接口
// 负责书签和每种阅读语言的最后阅读位置
type ProgressRepository interface {
	// ToggleBookmark 切换书签状态，返回切换后的状态
	ToggleBookmark(kanda, sarga, sloka int) (bool, error)

	// IsBookmarked 查询书签状态
	IsBookmarked(kanda, sarga, sloka int) (bool, error)

	// ListBookmarks 列出全部书签，按 (kanda, sarga, sloka) 排序
	ListBookmarks() ([]*models.Bookmark, error)

	// SetReadingPosition 记录某阅读语言的最后阅读位置
	SetReadingPosition(language string, kanda, sarga, sloka int) error

	// GetReadingPosition 获取某阅读语言的最后阅读位置
	GetReadingPosition(language string) (*models.ReadingPosition, error)

	// ListReadingPositions 列出各阅读语言的最后阅读位置
	ListReadingPositions() ([]*models.ReadingPosition, error)
}

// StatsRepository 统计仓储接口
// 诗节数统计表的upsert和查询
type StatsRepository interface {
	// UpsertSargaStats 写入或更新一章的诗节数
	UpsertSargaStats(kanda, sarga, slokaCount int) error

	// GetSargaStats 获取一章的诗节数统计
	GetSargaStats(kanda, sarga int) (*models.SargaStats, error)

	// ListSargaStats 列出一卷的全部章统计，按章号排序
	ListSargaStats(kanda int) ([]*models.SargaStats, error)

	// UpsertKandaStats 写入或更新一卷的汇总统计
	UpsertKandaStats(kanda, totalSargas, totalSlokas int) error

	// GetKandaStats 获取一卷的汇总统计
	GetKandaStats(kanda int) (*models.KandaStats, error)
}
