package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fyerfyer/valmiki-reader/api/handler"
	"github.com/fyerfyer/valmiki-reader/api/model"
	"github.com/fyerfyer/valmiki-reader/internal/cache"
	"github.com/fyerfyer/valmiki-reader/internal/database"
	"github.com/fyerfyer/valmiki-reader/internal/models"
	"github.com/fyerfyer/valmiki-reader/internal/repository"
	"github.com/fyerfyer/valmiki-reader/internal/services"
	"github.com/fyerfyer/valmiki-reader/internal/sloka"
)

// stubFetcher 返回预置页面的抓取器
type stubFetcher struct {
	pages map[string]string
}

func (f *stubFetcher) FetchPage(ctx context.Context, kanda, sarga int, script sloka.Script) (string, error) {
	page, ok := f.pages[fmt.Sprintf("%d.%d.%s", kanda, sarga, script)]
	if !ok {
		return "", fmt.Errorf("%w: kanda %d sarga %d", models.ErrSargaNotFound, kanda, sarga)
	}
	return page, nil
}

// makeSargaPage 生成一个n节的列表页片段
func makeSargaPage(kanda, sarga, n int) string {
	page := `<div class="view-content">`
	for i := 1; i <= n; i++ {
		page += fmt.Sprintf(`
  <div class="views-row">
    <div class="views-field views-field-body">
      <div class="field-content"><p>तपस्स्वाध्यायनिरतं वाक्यम् ৷৷%d.%d.%d৷৷</p></div>
    </div>
    <div class="views-field views-field-field-htetrans">
      <div class="field-content">वाक्यम् sentence,</div>
    </div>
    <div class="views-field views-field-field-explanation">
      <div class="field-content">Verse %d of the chapter.</div>
    </div>
  </div>`, kanda, sarga, i, i)
	}
	return page + `</div>`
}

type apiFixture struct {
	router   *gin.Engine
	stats    *services.StatsService
	progress *services.ProgressService
}

// setupAPITest 用内存数据库和预置页面搭一套完整的API
func setupAPITest(t *testing.T, pages map[string]string) (*apiFixture, func()) {
	gin.SetMode(gin.TestMode)

	dbName := fmt.Sprintf("file:memdb_api_%d?mode=memory", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	require.NoError(t, err, "Failed to open in-memory database")

	err = db.AutoMigrate(
		&models.SlokaRow{},
		&models.Bookmark{},
		&models.ReadingPosition{},
		&models.SargaStats{},
		&models.KandaStats{},
	)
	require.NoError(t, err, "Failed to run migrations")

	originalDB := database.DB
	database.DB = db

	memCache, err := cache.NewMemoryCache(cache.DefaultConfig())
	require.NoError(t, err)

	readerService := services.NewReaderService(
		&stubFetcher{pages: pages},
		memCache,
		repository.NewSlokaRepository(),
	)
	translationService := services.NewTranslationService(nil, memCache)
	progressService := services.NewProgressService(repository.NewProgressRepository(), nil)
	statsService := services.NewStatsService(repository.NewStatsRepository(), nil)

	router := SetupRouter(
		handler.NewReaderHandler(readerService, translationService, progressService),
		handler.NewProgressHandler(progressService),
		handler.NewStatsHandler(statsService),
		nil,
	)

	fixture := &apiFixture{
		router:   router,
		stats:    statsService,
		progress: progressService,
	}
	cleanup := func() {
		database.DB = originalDB
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	return fixture, cleanup
}

// doRequest 发送请求并把响应体解码到out（envelope里的data字段）
func doRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if out != nil && w.Code == http.StatusOK {
		var envelope struct {
			Code int             `json:"code"`
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		require.Equal(t, 0, envelope.Code)
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
	return w
}

func TestGetSargaAPI(t *testing.T) {
	fixture, cleanup := setupAPITest(t, map[string]string{
		"1.1.te": makeSargaPage(1, 1, 3),
	})
	defer cleanup()

	var resp model.SargaResponse
	w := doRequest(t, fixture.router, http.MethodGet, "/api/kandas/1/sargas/1", nil, &resp)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1, resp.Kanda)
	assert.Equal(t, 1, resp.Sarga)
	assert.Equal(t, "te", resp.Script)
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Slokas, 3)
	assert.Equal(t, "1.1.1", resp.Slokas[0].Number)
	assert.Equal(t, 1, resp.Slokas[0].Position)
	assert.Equal(t, "Verse 1 of the chapter.", resp.Slokas[0].Meaning)
	require.Len(t, resp.Slokas[0].Glossary, 1)
	assert.Equal(t, "वाक्यम्", resp.Slokas[0].Glossary[0].Word)
}

func TestGetSargaAPI_Pagination(t *testing.T) {
	fixture, cleanup := setupAPITest(t, map[string]string{
		"1.1.te": makeSargaPage(1, 1, 5),
	})
	defer cleanup()

	var resp model.SargaResponse
	w := doRequest(t, fixture.router, http.MethodGet, "/api/kandas/1/sargas/1?page=2&page_size=2", nil, &resp)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 5, resp.Total)
	assert.Equal(t, 2, resp.Page)
	require.Len(t, resp.Slokas, 2)
	assert.Equal(t, "1.1.3", resp.Slokas[0].Number)
	assert.Equal(t, "1.1.4", resp.Slokas[1].Number)
}

func TestGetSargaAPI_NotFound(t *testing.T) {
	fixture, cleanup := setupAPITest(t, nil)
	defer cleanup()

	w := doRequest(t, fixture.router, http.MethodGet, "/api/kandas/1/sargas/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSargaAPI_BadParams(t *testing.T) {
	fixture, cleanup := setupAPITest(t, nil)
	defer cleanup()

	// 卷号超出范围
	w := doRequest(t, fixture.router, http.MethodGet, "/api/kandas/9/sargas/1", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 文字版本不受支持
	w = doRequest(t, fixture.router, http.MethodGet, "/api/kandas/1/sargas/1?script=xx", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSlokaAPI(t *testing.T) {
	fixture, cleanup := setupAPITest(t, map[string]string{
		"1.1.te": makeSargaPage(1, 1, 3),
	})
	defer cleanup()

	var resp model.SlokaResponse
	w := doRequest(t, fixture.router, http.MethodGet, "/api/kandas/1/sargas/1/slokas/2", nil, &resp)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 2, resp.Position)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, "1.1.2", resp.Sloka.Number)
	assert.False(t, resp.Bookmarked)
	require.NotNil(t, resp.Prev)
	assert.Equal(t, 1, resp.Prev.Sloka)
	require.NotNil(t, resp.Next)
	assert.Equal(t, 3, resp.Next.Sloka)

	// 节号越界
	w = doRequest(t, fixture.router, http.MethodGet, "/api/kandas/1/sargas/1/slokas/4", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookmarkAPI(t *testing.T) {
	fixture, cleanup := setupAPITest(t, map[string]string{
		"1.1.te": makeSargaPage(1, 1, 3),
	})
	defer cleanup()

	var toggle model.BookmarkToggleResponse
	w := doRequest(t, fixture.router, http.MethodPost, "/api/kandas/1/sargas/1/slokas/2/bookmark", nil, &toggle)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, toggle.Bookmarked)

	// 书签状态出现在单节视图里
	var view model.SlokaResponse
	w = doRequest(t, fixture.router, http.MethodGet, "/api/kandas/1/sargas/1/slokas/2", nil, &view)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, view.Bookmarked)

	var list model.BookmarkListResponse
	w = doRequest(t, fixture.router, http.MethodGet, "/api/bookmarks", nil, &list)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, 2, list.Bookmarks[0].Sloka)

	// 再次切换取消
	w = doRequest(t, fixture.router, http.MethodPost, "/api/kandas/1/sargas/1/slokas/2/bookmark", nil, &toggle)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, toggle.Bookmarked)
}

func TestMarkReadAndProgressAPI(t *testing.T) {
	fixture, cleanup := setupAPITest(t, map[string]string{
		"1.1.te": makeSargaPage(1, 1, 3),
	})
	defer cleanup()

	w := doRequest(t, fixture.router, http.MethodPost,
		"/api/kandas/1/sargas/1/slokas/2/read",
		map[string]string{"lang": "te"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// 不支持的阅读语言
	w = doRequest(t, fixture.router, http.MethodPost,
		"/api/kandas/1/sargas/1/slokas/2/read",
		map[string]string{"lang": "fr"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var progress model.ProgressResponse
	w = doRequest(t, fixture.router, http.MethodGet, "/api/progress", nil, &progress)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, progress.Positions, 1)
	assert.Equal(t, "te", progress.Positions[0].Lang)
	assert.Equal(t, 2, progress.Positions[0].Sloka)
}

func TestKandaStatsAPI(t *testing.T) {
	fixture, cleanup := setupAPITest(t, nil)
	defer cleanup()

	require.NoError(t, fixture.stats.RecordSargaCount(1, 1, 100))
	require.NoError(t, fixture.stats.RecordSargaCount(1, 2, 49))
	require.NoError(t, fixture.stats.RecomputeKanda(1))

	var resp model.KandaStatsResponse
	w := doRequest(t, fixture.router, http.MethodGet, "/api/kandas/1/stats", nil, &resp)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1, resp.Kanda)
	assert.Equal(t, 2, resp.TotalSargas)
	assert.Equal(t, 149, resp.TotalSlokas)
	require.Len(t, resp.Sargas, 2)
	assert.Equal(t, 100, resp.Sargas[0].SlokaCount)
}

func TestKandaStatsAPI_Empty(t *testing.T) {
	fixture, cleanup := setupAPITest(t, nil)
	defer cleanup()

	// 没有统计数据时返回零值而不是404
	var resp model.KandaStatsResponse
	w := doRequest(t, fixture.router, http.MethodGet, "/api/kandas/2/stats", nil, &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, resp.TotalSargas)
	assert.Empty(t, resp.Sargas)
}

func TestTasksDisabledAPI(t *testing.T) {
	fixture, cleanup := setupAPITest(t, nil)
	defer cleanup()

	// 队列未启用时任务路由不存在
	w := doRequest(t, fixture.router, http.MethodPost, "/api/tasks/prefetch",
		map[string]interface{}{"type": "sarga_prefetch", "kanda": 1, "sarga": 5}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAPI(t *testing.T) {
	fixture, cleanup := setupAPITest(t, nil)
	defer cleanup()

	w := doRequest(t, fixture.router, http.MethodGet, "/api/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
