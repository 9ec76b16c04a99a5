package api

import (
	"github.com/fyerfyer/valmiki-reader/api/handler"
	"github.com/fyerfyer/valmiki-reader/api/middleware"
	"github.com/fyerfyer/valmiki-reader/internal/services"
	"github.com/fyerfyer/valmiki-reader/internal/sloka"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupRouter 设置API路由
// 配置所有的API端点并应用中间件
func SetupRouter(
	readerHandler *handler.ReaderHandler,
	progressHandler *handler.ProgressHandler,
	statsHandler *handler.StatsHandler,
	taskHandler *handler.TaskHandler,
) *gin.Engine {
	// 注册自定义校验规则
	RegisterValidators()

	// 创建默认的Gin路由引擎
	router := gin.Default()

	// 应用全局中间件
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorMiddleware())
	router.Use(middleware.SetTraceID())

	// 在调试模式下记录请求体和响应体
	if gin.Mode() == gin.DebugMode {
		router.Use(middleware.RequestBodyLog())
	}

	// 创建API分组
	api := router.Group("/api")
	{
		// 章节阅读API
		kandaGroup := api.Group("/kandas/:kanda")
		{
			// 读取一章 - GET /api/kandas/:kanda/sargas/:sarga
			kandaGroup.GET("/sargas/:sarga", readerHandler.GetSarga)

			// 读取单节 - GET /api/kandas/:kanda/sargas/:sarga/slokas/:sloka
			kandaGroup.GET("/sargas/:sarga/slokas/:sloka", readerHandler.GetSloka)

			// 切换书签 - POST /api/kandas/:kanda/sargas/:sarga/slokas/:sloka/bookmark
			kandaGroup.POST("/sargas/:sarga/slokas/:sloka/bookmark", progressHandler.ToggleBookmark)

			// 标记已读 - POST /api/kandas/:kanda/sargas/:sarga/slokas/:sloka/read
			kandaGroup.POST("/sargas/:sarga/slokas/:sloka/read", progressHandler.MarkRead)

			// 卷统计 - GET /api/kandas/:kanda/stats
			kandaGroup.GET("/stats", statsHandler.GetKandaStats)
		}

		// 书签与进度API
		api.GET("/bookmarks", progressHandler.ListBookmarks)
		api.GET("/progress", progressHandler.GetProgress)

		// 任务API（队列未启用时不注册）
		if taskHandler != nil {
			taskGroup := api.Group("/tasks")
			{
				// 入队预取任务 - POST /api/tasks/prefetch
				taskGroup.POST("/prefetch", taskHandler.EnqueuePrefetch)

				// 查询任务状态 - GET /api/tasks/:id
				taskGroup.GET("/:id", taskHandler.GetTaskStatus)

				// 查询对象相关任务 - GET /api/tasks/subject/:subject
				taskGroup.GET("/subject/:subject", taskHandler.GetSubjectTasks)
			}
		}

		// 健康检查API
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
			})
		})
	}

	return router
}

// RegisterValidators 注册文字版本和阅读语言的校验规则
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("script", func(fl validator.FieldLevel) bool {
		return sloka.Script(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("displaylang", func(fl validator.FieldLevel) bool {
		return services.ValidLanguage(fl.Field().String())
	})
}

// RegisterSwagger 注册Swagger文档路由
// TODO: 当集成Swagger文档后实现此函数
func RegisterSwagger(router *gin.Engine) {
	// 待实现：集成Swagger API文档
}

// RegisterWebUI 注册Web UI路由
// TODO: 当前端页面准备好后实现此函数
func RegisterWebUI(router *gin.Engine) {
	// 待实现：集成前端页面
	// 示例：router.StaticFile("/", "./web/dist/index.html")
	// 示例：router.Static("/static", "./web/dist/static")
}

// Cors 跨域资源共享中间件
// 如果需要支持跨域请求，可以启用此中间件
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Trace-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
