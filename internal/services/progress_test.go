package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fyerfyer/valmiki-reader/internal/database"
	"github.com/fyerfyer/valmiki-reader/internal/models"
	"github.com/fyerfyer/valmiki-reader/internal/repository"
)

func setupServiceDB(t *testing.T) func() {
	// 使用唯一的内存数据库标识符
	dbName := fmt.Sprintf("file:memdb_svc_%d?mode=memory", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	require.NoError(t, err, "Failed to open in-memory database")

	err = db.AutoMigrate(
		&models.Bookmark{},
		&models.ReadingPosition{},
		&models.SargaStats{},
		&models.KandaStats{},
	)
	require.NoError(t, err, "Failed to run migrations")

	originalDB := database.DB
	database.DB = db

	return func() {
		database.DB = originalDB
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func TestProgressToggleBookmark(t *testing.T) {
	cleanup := setupServiceDB(t)
	defer cleanup()

	service := NewProgressService(repository.NewProgressRepository(), nil)

	bookmarked, err := service.ToggleBookmark(1, 5, 3)
	require.NoError(t, err)
	assert.True(t, bookmarked)

	got, err := service.IsBookmarked(1, 5, 3)
	require.NoError(t, err)
	assert.True(t, got)

	// 再次切换取消书签
	bookmarked, err = service.ToggleBookmark(1, 5, 3)
	require.NoError(t, err)
	assert.False(t, bookmarked)

	got, err = service.IsBookmarked(1, 5, 3)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestProgressToggleBookmark_InvalidRef(t *testing.T) {
	cleanup := setupServiceDB(t)
	defer cleanup()

	service := NewProgressService(repository.NewProgressRepository(), nil)

	_, err := service.ToggleBookmark(0, 5, 3)
	assert.Error(t, err)
	_, err = service.ToggleBookmark(1, 0, 3)
	assert.Error(t, err)
	_, err = service.ToggleBookmark(1, 5, 0)
	assert.Error(t, err)
}

func TestProgressBookmarks_Order(t *testing.T) {
	cleanup := setupServiceDB(t)
	defer cleanup()

	service := NewProgressService(repository.NewProgressRepository(), nil)

	for _, ref := range [][3]int{{2, 1, 1}, {1, 5, 3}, {1, 2, 7}} {
		_, err := service.ToggleBookmark(ref[0], ref[1], ref[2])
		require.NoError(t, err)
	}

	bookmarks, err := service.Bookmarks()
	require.NoError(t, err)
	require.Len(t, bookmarks, 3)
	assert.Equal(t, uint(1), bookmarks[0].Kanda)
	assert.Equal(t, uint(2), bookmarks[0].Sarga)
	assert.Equal(t, uint(5), bookmarks[1].Sarga)
	assert.Equal(t, uint(2), bookmarks[2].Kanda)
}

func TestProgressMarkRead(t *testing.T) {
	cleanup := setupServiceDB(t)
	defer cleanup()

	service := NewProgressService(repository.NewProgressRepository(), nil)

	// 没有历史时返回nil
	pos, err := service.LastRead(LangTelugu)
	require.NoError(t, err)
	assert.Nil(t, pos)

	require.NoError(t, service.MarkRead(LangTelugu, 1, 5, 3))
	require.NoError(t, service.MarkRead(LangTelugu, 1, 5, 4))
	require.NoError(t, service.MarkRead(LangEnglish, 2, 1, 1))

	// 同一语言只保留最后一次
	pos, err = service.LastRead(LangTelugu)
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.Equal(t, uint(5), pos.Sarga)
	assert.Equal(t, uint(4), pos.Sloka)

	positions, err := service.ReadingPositions()
	require.NoError(t, err)
	assert.Len(t, positions, 2)
}

func TestProgressMarkRead_Invalid(t *testing.T) {
	cleanup := setupServiceDB(t)
	defer cleanup()

	service := NewProgressService(repository.NewProgressRepository(), nil)

	err := service.MarkRead("fr", 1, 1, 1)
	assert.ErrorIs(t, err, models.ErrInvalidLanguage)

	err = service.MarkRead(LangTelugu, 1, 1, 0)
	assert.Error(t, err)

	_, err = service.LastRead("fr")
	assert.ErrorIs(t, err, models.ErrInvalidLanguage)
}
