package handler

import (
	"errors"
	"net/http"

	"github.com/fyerfyer/valmiki-reader/api/middleware"
	"github.com/fyerfyer/valmiki-reader/api/model"
	"github.com/fyerfyer/valmiki-reader/internal/models"
	"github.com/fyerfyer/valmiki-reader/internal/services"
	"github.com/fyerfyer/valmiki-reader/internal/sloka"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ReaderHandler 处理章节阅读相关的API请求
type ReaderHandler struct {
	readerService      *services.ReaderService      // 章节阅读服务
	translationService *services.TranslationService // 释义翻译服务
	progressService    *services.ProgressService    // 阅读进度服务
	logger             *logrus.Logger               // 日志记录器
}

// NewReaderHandler 创建新的阅读处理器
func NewReaderHandler(
	readerService *services.ReaderService,
	translationService *services.TranslationService,
	progressService *services.ProgressService,
) *ReaderHandler {
	return &ReaderHandler{
		readerService:      readerService,
		translationService: translationService,
		progressService:    progressService,
		logger:             middleware.GetLogger(),
	}
}

// resolveScript 解析查询参数里的文字版本，默认泰卢固文
func resolveScript(raw string) (sloka.Script, bool) {
	if raw == "" {
		return sloka.ScriptTelugu, true
	}
	script := sloka.Script(raw)
	return script, script.Valid()
}

// GetSarga 读取一章的诗节，支持分页
// GET /api/kandas/:kanda/sargas/:sarga
func (h *ReaderHandler) GetSarga(c *gin.Context) {
	var uri model.SargaURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.logger.WithField("error", err.Error()).Warn("Invalid sarga path params")
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的卷号或章号",
		))
		return
	}

	var query model.SargaQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的查询参数",
		))
		return
	}

	script, ok := resolveScript(query.Script)
	if !ok {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的文字版本，支持 te 或 dv",
		))
		return
	}

	loaded, err := h.readerService.Sarga(c.Request.Context(), uri.Kanda, uri.Sarga, script)
	if err != nil {
		if errors.Is(err, models.ErrSargaNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"章不存在",
			))
			return
		}

		h.logger.WithFields(logrus.Fields{
			"kanda": uri.Kanda,
			"sarga": uri.Sarga,
			"error": err.Error(),
		}).Error("Failed to load sarga")
		middleware.HandleError(c, err)
		return
	}

	// 对诗节列表分页
	slokas := loaded.Slokas()
	page := query.GetPage()
	pageSize := query.GetPageSize()
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(slokas) {
		start = len(slokas)
	}
	if end > len(slokas) {
		end = len(slokas)
	}

	items := make([]model.SlokaInfo, 0, end-start)
	for i := start; i < end; i++ {
		items = append(items, model.ConvertSlokaInfo(&slokas[i]))
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.SargaResponse{
		Kanda:    uri.Kanda,
		Sarga:    uri.Sarga,
		Script:   string(script),
		Total:    loaded.Len(),
		Page:     page,
		PageSize: pageSize,
		Slokas:   items,
	}))
}

// GetSloka 读取单个诗节的阅读视图
// GET /api/kandas/:kanda/sargas/:sarga/slokas/:sloka
func (h *ReaderHandler) GetSloka(c *gin.Context) {
	var uri model.SlokaURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.logger.WithField("error", err.Error()).Warn("Invalid sloka path params")
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的卷号、章号或节号",
		))
		return
	}

	var query model.SlokaQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的查询参数",
		))
		return
	}

	script, ok := resolveScript(query.Script)
	if !ok {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的文字版本，支持 te 或 dv",
		))
		return
	}

	lang := query.Lang
	if lang == "" {
		lang = services.LangEnglish
	}
	if !services.ValidLanguage(lang) {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的阅读语言，支持 en、te 或 tg",
		))
		return
	}

	ctx := c.Request.Context()
	view, err := h.readerService.Sloka(ctx, uri.Kanda, uri.Sarga, uri.Sloka, script)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrSargaNotFound):
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"章不存在",
			))
		case errors.Is(err, models.ErrSlokaNotFound):
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"节不存在",
			))
		default:
			h.logger.WithFields(logrus.Fields{
				"kanda": uri.Kanda,
				"sarga": uri.Sarga,
				"sloka": uri.Sloka,
				"error": err.Error(),
			}).Error("Failed to load sloka")
			middleware.HandleError(c, err)
		}
		return
	}

	info := model.ConvertSlokaInfo(&view.Record)

	// 按阅读语言转换整节释义，转换失败回退原文
	if info.Meaning != "" {
		meaning, err := h.translationService.Meaning(ctx, lang, info.Meaning)
		if err != nil {
			h.logger.WithFields(logrus.Fields{
				"lang":  lang,
				"error": err.Error(),
			}).Warn("Failed to translate meaning, falling back to source text")
		} else {
			info.Meaning = meaning
		}
	}

	bookmarked, err := h.progressService.IsBookmarked(uri.Kanda, uri.Sarga, uri.Sloka)
	if err != nil {
		h.logger.WithField("error", err.Error()).Warn("Failed to check bookmark state")
	}

	resp := model.SlokaResponse{
		Kanda:      uri.Kanda,
		Sarga:      uri.Sarga,
		Position:   uri.Sloka,
		Total:      view.Total,
		Script:     string(script),
		Lang:       lang,
		Sloka:      info,
		Bookmarked: bookmarked,
	}
	if view.Prev != nil {
		resp.Prev = &model.SlokaNavInfo{Kanda: view.Prev.Kanda, Sarga: view.Prev.Sarga, Sloka: view.Prev.Sloka}
	}
	if view.Next != nil {
		resp.Next = &model.SlokaNavInfo{Kanda: view.Next.Kanda, Sarga: view.Next.Sarga, Sloka: view.Next.Sloka}
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}
