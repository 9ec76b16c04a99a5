package handler

import (
	"net/http"

	"github.com/fyerfyer/valmiki-reader/api/middleware"
	"github.com/fyerfyer/valmiki-reader/api/model"
	"github.com/fyerfyer/valmiki-reader/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ProgressHandler 处理书签和阅读进度相关的API请求
type ProgressHandler struct {
	progressService *services.ProgressService // 阅读进度服务
	logger          *logrus.Logger            // 日志记录器
}

// NewProgressHandler 创建新的进度处理器
func NewProgressHandler(progressService *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
		logger:          middleware.GetLogger(),
	}
}

// ToggleBookmark 切换一个诗节的书签状态
// POST /api/kandas/:kanda/sargas/:sarga/slokas/:sloka/bookmark
func (h *ProgressHandler) ToggleBookmark(c *gin.Context) {
	var uri model.SlokaURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的卷号、章号或节号",
		))
		return
	}

	bookmarked, err := h.progressService.ToggleBookmark(uri.Kanda, uri.Sarga, uri.Sloka)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"kanda": uri.Kanda,
			"sarga": uri.Sarga,
			"sloka": uri.Sloka,
			"error": err.Error(),
		}).Error("Failed to toggle bookmark")
		middleware.HandleError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"kanda":      uri.Kanda,
		"sarga":      uri.Sarga,
		"sloka":      uri.Sloka,
		"bookmarked": bookmarked,
	}).Info("Bookmark toggled")

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.BookmarkToggleResponse{
		Kanda:      uri.Kanda,
		Sarga:      uri.Sarga,
		Sloka:      uri.Sloka,
		Bookmarked: bookmarked,
	}))
}

// ListBookmarks 列出所有书签
// GET /api/bookmarks
func (h *ProgressHandler) ListBookmarks(c *gin.Context) {
	bookmarks, err := h.progressService.Bookmarks()
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to list bookmarks")
		middleware.HandleError(c, err)
		return
	}

	items := make([]model.BookmarkInfo, 0, len(bookmarks))
	for _, b := range bookmarks {
		items = append(items, model.BookmarkInfo{
			Kanda:     int(b.Kanda),
			Sarga:     int(b.Sarga),
			Sloka:     int(b.Sloka),
			CreatedAt: b.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.BookmarkListResponse{
		Total:     len(items),
		Bookmarks: items,
	}))
}

// MarkRead 记录某语言下的最后阅读位置
// POST /api/kandas/:kanda/sargas/:sarga/slokas/:sloka/read
func (h *ProgressHandler) MarkRead(c *gin.Context) {
	var uri model.SlokaURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的卷号、章号或节号",
		))
		return
	}

	var req model.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的请求参数",
		))
		return
	}

	if err := h.progressService.MarkRead(req.Lang, uri.Kanda, uri.Sarga, uri.Sloka); err != nil {
		h.logger.WithFields(logrus.Fields{
			"lang":  req.Lang,
			"kanda": uri.Kanda,
			"sarga": uri.Sarga,
			"sloka": uri.Sloka,
			"error": err.Error(),
		}).Error("Failed to mark read position")
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.ReadingPositionInfo{
		Lang:  req.Lang,
		Kanda: uri.Kanda,
		Sarga: uri.Sarga,
		Sloka: uri.Sloka,
	}))
}

// GetProgress 获取各语言的最后阅读位置
// GET /api/progress
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	positions, err := h.progressService.ReadingPositions()
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to list reading positions")
		middleware.HandleError(c, err)
		return
	}

	items := make([]model.ReadingPositionInfo, 0, len(positions))
	for _, p := range positions {
		items = append(items, model.ReadingPositionInfo{
			Lang:      p.Language,
			Kanda:     int(p.Kanda),
			Sarga:     int(p.Sarga),
			Sloka:     int(p.Sloka),
			UpdatedAt: p.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.ProgressResponse{
		Positions: items,
	}))
}
