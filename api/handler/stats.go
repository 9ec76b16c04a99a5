package handler

import (
	"net/http"

	"github.com/fyerfyer/valmiki-reader/api/middleware"
	"github.com/fyerfyer/valmiki-reader/api/model"
	"github.com/fyerfyer/valmiki-reader/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// StatsHandler 处理统计相关的API请求
type StatsHandler struct {
	statsService *services.StatsService // 统计服务
	logger       *logrus.Logger         // 日志记录器
}

// NewStatsHandler 创建新的统计处理器
func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		logger:       middleware.GetLogger(),
	}
}

// GetKandaStats 获取一卷的统计概览
// GET /api/kandas/:kanda/stats
func (h *StatsHandler) GetKandaStats(c *gin.Context) {
	var uri model.KandaURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"无效的卷号",
		))
		return
	}

	overview, err := h.statsService.Overview(uri.Kanda)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"kanda": uri.Kanda,
			"error": err.Error(),
		}).Error("Failed to get kanda stats")
		middleware.HandleError(c, err)
		return
	}

	resp := model.KandaStatsResponse{
		Kanda:  uri.Kanda,
		Sargas: make([]model.SargaStatsInfo, 0, len(overview.Sargas)),
	}
	if overview.Kanda != nil {
		resp.TotalSargas = int(overview.Kanda.TotalSargas)
		resp.TotalSlokas = int(overview.Kanda.TotalSlokas)
	}
	for _, s := range overview.Sargas {
		resp.Sargas = append(resp.Sargas, model.SargaStatsInfo{
			Sarga:      int(s.Sarga),
			SlokaCount: int(s.SlokaCount),
		})
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}
