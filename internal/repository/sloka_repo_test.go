package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/fyerfyer/valmiki-reader/internal/database"
	"github.com/fyerfyer/valmiki-reader/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	// 使用唯一的内存数据库标识符
	dbName := fmt.Sprintf("file:memdb_%d?mode=memory", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	require.NoError(t, err, "Failed to open in-memory database")

	// 运行迁移以创建所需的表
	err = db.AutoMigrate(
		&models.SlokaRow{},
		&models.Bookmark{},
		&models.ReadingPosition{},
		&models.SargaStats{},
		&models.KandaStats{},
	)
	require.NoError(t, err, "Failed to run migrations")

	// 保存原始全局DB引用
	originalDB := database.DB

	// 替换全局DB为测试DB
	database.DB = db

	// 返回测试DB和清理函数
	cleanup := func() {
		// 恢复原始DB引用
		database.DB = originalDB
	}

	return db, cleanup
}

// makeRows 构造一章的测试记录
func makeRows(kanda, sarga int, script string, count int) []*models.SlokaRow {
	rows := make([]*models.SlokaRow, count)
	for i := 0; i < count; i++ {
		rows[i] = &models.SlokaRow{
			Kanda:      uint(kanda),
			Sarga:      uint(sarga),
			Script:     script,
			Position:   uint(i),
			NumberText: fmt.Sprintf("%d.%d.%d", kanda, sarga, i+1),
			Text:       fmt.Sprintf("verse %d", i+1),
		}
	}
	return rows
}

func TestSlokaRepository_ReplaceAndGet(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSlokaRepository()

	err := repo.ReplaceSarga(1, 1, "te", makeRows(1, 1, "te", 3))
	require.NoError(t, err)

	rows, err := repo.GetSarga(1, 1, "te")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// 记录按位置排序
	for i, row := range rows {
		assert.Equal(t, uint(i), row.Position)
	}

	// 再次替换为更少的记录，旧记录全部清除
	err = repo.ReplaceSarga(1, 1, "te", makeRows(1, 1, "te", 2))
	require.NoError(t, err)

	count, err := repo.CountSarga(1, 1, "te")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestSlokaRepository_ScriptIsolation(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSlokaRepository()

	require.NoError(t, repo.ReplaceSarga(1, 1, "te", makeRows(1, 1, "te", 2)))
	require.NoError(t, repo.ReplaceSarga(1, 1, "dv", makeRows(1, 1, "dv", 3)))

	// 两种文字版本的记录互不干扰
	teRows, err := repo.GetSarga(1, 1, "te")
	require.NoError(t, err)
	assert.Len(t, teRows, 2)

	dvRows, err := repo.GetSarga(1, 1, "dv")
	require.NoError(t, err)
	assert.Len(t, dvRows, 3)
}

func TestSlokaRepository_GetMissing(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSlokaRepository()

	rows, err := repo.GetSarga(5, 99, "te")
	require.NoError(t, err)
	assert.Empty(t, rows)

	count, err := repo.CountSarga(5, 99, "te")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSlokaRepository_Delete(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSlokaRepository()

	require.NoError(t, repo.ReplaceSarga(2, 3, "te", makeRows(2, 3, "te", 4)))
	require.NoError(t, repo.DeleteSarga(2, 3, "te"))

	count, err := repo.CountSarga(2, 3, "te")
	require.NoError(t, err)
	assert.Zero(t, count)
}
