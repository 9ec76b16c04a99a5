package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressRepository_ToggleBookmark(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProgressRepository()

	// 第一次切换：加上书签
	bookmarked, err := repo.ToggleBookmark(1, 2, 3)
	require.NoError(t, err)
	assert.True(t, bookmarked)

	state, err := repo.IsBookmarked(1, 2, 3)
	require.NoError(t, err)
	assert.True(t, state)

	// 第二次切换：取消书签
	bookmarked, err = repo.ToggleBookmark(1, 2, 3)
	require.NoError(t, err)
	assert.False(t, bookmarked)

	state, err = repo.IsBookmarked(1, 2, 3)
	require.NoError(t, err)
	assert.False(t, state)
}

func TestProgressRepository_ListBookmarks(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProgressRepository()

	// 乱序插入
	for _, ref := range [][3]int{{2, 1, 5}, {1, 3, 2}, {1, 1, 9}} {
		_, err := repo.ToggleBookmark(ref[0], ref[1], ref[2])
		require.NoError(t, err)
	}

	bookmarks, err := repo.ListBookmarks()
	require.NoError(t, err)
	require.Len(t, bookmarks, 3)

	// 按 (kanda, sarga, sloka) 排序
	assert.Equal(t, uint(1), bookmarks[0].Kanda)
	assert.Equal(t, uint(1), bookmarks[0].Sarga)
	assert.Equal(t, uint(3), bookmarks[1].Sarga)
	assert.Equal(t, uint(2), bookmarks[2].Kanda)
}

func TestProgressRepository_ReadingPosition(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProgressRepository()

	// 未记录的语言返回nil
	position, err := repo.GetReadingPosition("en")
	require.NoError(t, err)
	assert.Nil(t, position)

	require.NoError(t, repo.SetReadingPosition("en", 1, 2, 3))

	position, err = repo.GetReadingPosition("en")
	require.NoError(t, err)
	require.NotNil(t, position)
	assert.Equal(t, uint(1), position.Kanda)
	assert.Equal(t, uint(2), position.Sarga)
	assert.Equal(t, uint(3), position.Sloka)

	// 同一语言覆盖写入，只保留最新位置
	require.NoError(t, repo.SetReadingPosition("en", 4, 5, 6))

	position, err = repo.GetReadingPosition("en")
	require.NoError(t, err)
	require.NotNil(t, position)
	assert.Equal(t, uint(4), position.Kanda)
	assert.Equal(t, uint(6), position.Sloka)

	// 不同语言的进度互不干扰
	require.NoError(t, repo.SetReadingPosition("te", 1, 1, 1))

	positions, err := repo.ListReadingPositions()
	require.NoError(t, err)
	assert.Len(t, positions, 2)
}
