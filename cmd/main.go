package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fyerfyer/valmiki-reader/api"
	"github.com/fyerfyer/valmiki-reader/api/handler"
	"github.com/fyerfyer/valmiki-reader/api/middleware"
	appconfig "github.com/fyerfyer/valmiki-reader/config"
	"github.com/fyerfyer/valmiki-reader/internal/cache"
	"github.com/fyerfyer/valmiki-reader/internal/database"
	"github.com/fyerfyer/valmiki-reader/internal/fetcher"
	"github.com/fyerfyer/valmiki-reader/internal/repository"
	"github.com/fyerfyer/valmiki-reader/internal/services"
	"github.com/fyerfyer/valmiki-reader/pkg/pagestore"
	"github.com/fyerfyer/valmiki-reader/pkg/taskqueue"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// 配置选项
type config struct {
	Port         int           // 服务端口
	Mode         string        // 运行模式 (debug/release)
	LogLevel     string        // 日志级别
	LogFile      string        // 日志文件路径
	ReadTimeout  time.Duration // 读取超时
	WriteTimeout time.Duration // 写入超时
	DataDir      string        // 数据目录路径
	ConfigFile   string        // 配置文件路径

	// 上游抓取相关配置
	SourceBaseURL string        // 上游列表页基础地址
	SourceTimeout time.Duration // 抓取超时

	// 页面快照相关配置
	PageStoreEnabled bool   // 是否启用页面快照
	PageStoreType    string // 快照存储类型 (local/minio)
	PageStorePath    string // 本地快照目录

	// 缓存相关配置
	CacheType string // 缓存类型 (memory/redis)
	CacheTTL  time.Duration

	// 任务队列相关配置
	QueueEnabled     bool          // 是否启用任务队列
	QueueType        string        // 任务队列类型
	RedisAddr        string        // Redis 地址
	RedisPassword    string        // Redis 密码
	RedisDB          int           // Redis 数据库编号
	QueueConcurrency int           // 任务队列处理并发数
	QueueRetryLimit  int           // 任务重试次数
	QueueRetryDelay  time.Duration // 任务重试延迟
}

func main() {
	// 加载.env文件（如果存在）
	_ = godotenv.Load()

	// 解析命令行参数
	cfg := parseFlags()

	// 加载配置文件(如果指定)
	var appConfig *appconfig.Config
	var err error
	if cfg.ConfigFile != "" {
		appConfig, err = appconfig.Load(cfg.ConfigFile)
		if err != nil {
			log.Printf("Warning: Failed to load config file: %v, using command line args", err)
		} else {
			// 使用配置文件中的值更新相关设置
			updateConfigFromFile(&cfg, appConfig)
		}
	}

	// 设置Gin模式
	gin.SetMode(cfg.Mode)

	// 初始化日志
	logger := setupLogger(cfg.LogLevel, cfg.LogFile)
	logger.Info("Starting Valmiki Ramayana reader...")

	// 初始化数据库
	if err := setupDatabase(cfg, logger); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// 创建缓存服务
	cacheService, err := setupCache(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize cache: %v", err)
	}

	// 创建页面快照存储（如果启用）
	var pageStore pagestore.Store
	if cfg.PageStoreEnabled {
		pageStore, err = setupPageStore(cfg, appConfig)
		if err != nil {
			logger.Fatalf("Failed to initialize page store: %v", err)
		}
		logger.WithField("type", cfg.PageStoreType).Info("Page store initialized")
	}

	// 创建页面抓取器
	pageFetcher := fetcher.NewPageFetcher(&fetcher.Config{
		BaseURL: cfg.SourceBaseURL,
		Timeout: cfg.SourceTimeout,
	})

	// 初始化业务服务
	slokaRepo := repository.NewSlokaRepository()
	progressRepo := repository.NewProgressRepository()
	statsRepo := repository.NewStatsRepository()

	readerOptions := []services.ReaderOption{
		services.WithReaderCacheTTL(cfg.CacheTTL),
		services.WithReaderLogger(logger),
	}
	if pageStore != nil {
		readerOptions = append(readerOptions, services.WithPageStore(pageStore))
	}
	readerService := services.NewReaderService(pageFetcher, cacheService, slokaRepo, readerOptions...)

	// 翻译服务：未配置提供商时原样返回释义
	translator := setupTranslator(appConfig, logger)
	translationService := services.NewTranslationService(translator, cacheService,
		services.WithTranslationLogger(logger),
	)

	progressService := services.NewProgressService(progressRepo, logger)
	statsService := services.NewStatsService(statsRepo, logger)

	// 初始化任务队列和工作者（如果启用）
	var queue taskqueue.Queue
	var worker taskqueue.Worker
	if cfg.QueueEnabled {
		queue, worker, err = setupTaskQueue(cfg, readerService, statsService, logger)
		if err != nil {
			logger.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer queue.Close()

		if err := worker.Start(); err != nil {
			logger.Fatalf("Failed to start task worker: %v", err)
		}
		defer worker.Stop()
		logger.Info("Task queue initialized successfully")
	}

	// 初始化API处理器
	readerHandler := handler.NewReaderHandler(readerService, translationService, progressService)
	progressHandler := handler.NewProgressHandler(progressService)
	statsHandler := handler.NewStatsHandler(statsService)
	var taskHandler *handler.TaskHandler
	if queue != nil {
		taskHandler = handler.NewTaskHandler(queue)
	}

	// 设置路由
	r := api.SetupRouter(readerHandler, progressHandler, statsHandler, taskHandler)

	// 启动HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// 优雅关闭
	go func() {
		// 启动服务
		logger.Infof("Server is running on port %d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 等待终止信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// 创建带超时的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// parseFlags 解析命令行参数
func parseFlags() config {
	cfg := config{}

	// 服务配置
	flag.IntVar(&cfg.Port, "port", 8080, "Server port")
	flag.StringVar(&cfg.Mode, "mode", "debug", "Run mode (debug/release)")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug/info/warn/error)")
	flag.StringVar(&cfg.LogFile, "log-file", "", "Log file path (empty for stdout only)")
	flag.DurationVar(&cfg.ReadTimeout, "read-timeout", 30*time.Second, "Read timeout")
	flag.DurationVar(&cfg.WriteTimeout, "write-timeout", 30*time.Second, "Write timeout")

	// 上游抓取配置
	flag.StringVar(&cfg.SourceBaseURL, "source-url", fetcher.DefaultBaseURL, "Upstream sloka listing base URL")
	flag.DurationVar(&cfg.SourceTimeout, "source-timeout", 30*time.Second, "Upstream fetch timeout")

	// 页面快照配置
	flag.BoolVar(&cfg.PageStoreEnabled, "pagestore", true, "Enable raw page snapshots")
	flag.StringVar(&cfg.PageStoreType, "pagestore-type", "local", "Page store type (local/minio)")
	flag.StringVar(&cfg.PageStorePath, "pagestore-path", "./pages", "Local page store path")

	// 缓存配置
	flag.StringVar(&cfg.CacheType, "cache", "memory", "Cache type (memory/redis)")
	flag.DurationVar(&cfg.CacheTTL, "cache-ttl", time.Hour, "Parsed sarga cache TTL")

	// 数据目录配置
	flag.StringVar(&cfg.DataDir, "data-dir", "./data", "Data directory path")

	// 配置文件
	flag.StringVar(&cfg.ConfigFile, "config", "", "Path to config file")

	// 任务队列配置
	flag.BoolVar(&cfg.QueueEnabled, "queue", false, "Enable prefetch task queue")
	flag.StringVar(&cfg.QueueType, "queue-type", "redis", "Task queue type (redis)")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", "localhost:6379", "Redis address for task queue")
	flag.StringVar(&cfg.RedisPassword, "redis-password", "", "Redis password")
	flag.IntVar(&cfg.RedisDB, "redis-db", 0, "Redis database number")
	flag.IntVar(&cfg.QueueConcurrency, "queue-concurrency", 4, "Task queue concurrency")
	flag.IntVar(&cfg.QueueRetryLimit, "queue-retry", 3, "Max retry attempts for failed tasks")
	flag.DurationVar(&cfg.QueueRetryDelay, "queue-retry-delay", time.Minute, "Delay between retry attempts")

	// 从环境变量获取连接信息（优先级高于命令行参数）
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cfg.RedisAddr = redisAddr
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.RedisPassword = redisPassword
	}

	flag.Parse()
	return cfg
}

// updateConfigFromFile 从配置文件更新命令行参数
func updateConfigFromFile(cfg *config, appConfig *appconfig.Config) {
	// 只更新未在命令行上明确设置的参数

	// 上游抓取配置
	if flag.Lookup("source-url").DefValue == cfg.SourceBaseURL && appConfig.Source.BaseURL != "" {
		cfg.SourceBaseURL = appConfig.Source.BaseURL
	}
	if appConfig.Source.Timeout > 0 {
		cfg.SourceTimeout = appConfig.Source.Timeout
	}

	// 页面快照配置
	if flag.Lookup("pagestore-type").DefValue == cfg.PageStoreType && appConfig.PageStore.Type != "" {
		cfg.PageStoreType = appConfig.PageStore.Type
	}
	if flag.Lookup("pagestore-path").DefValue == cfg.PageStorePath && appConfig.PageStore.Path != "" {
		cfg.PageStorePath = appConfig.PageStore.Path
	}

	// 缓存配置
	if flag.Lookup("cache").DefValue == cfg.CacheType && appConfig.Cache.Type != "" {
		cfg.CacheType = appConfig.Cache.Type
	}
	if appConfig.Reader.CacheTTL > 0 {
		cfg.CacheTTL = time.Duration(appConfig.Reader.CacheTTL) * time.Second
	}

	// 任务队列配置
	if flag.Lookup("queue").DefValue == fmt.Sprint(cfg.QueueEnabled) {
		cfg.QueueEnabled = appConfig.Queue.Enable
	}
	if flag.Lookup("queue-type").DefValue == cfg.QueueType {
		cfg.QueueType = appConfig.Queue.Type
	}
	if flag.Lookup("redis-addr").DefValue == cfg.RedisAddr && appConfig.Queue.RedisAddr != "" {
		cfg.RedisAddr = appConfig.Queue.RedisAddr
	}
	if flag.Lookup("redis-password").DefValue == cfg.RedisPassword {
		cfg.RedisPassword = appConfig.Queue.RedisPassword
	}
	if flag.Lookup("redis-db").DefValue == fmt.Sprint(cfg.RedisDB) {
		cfg.RedisDB = appConfig.Queue.RedisDB
	}
	if flag.Lookup("queue-concurrency").DefValue == fmt.Sprint(cfg.QueueConcurrency) && appConfig.Queue.Concurrency > 0 {
		cfg.QueueConcurrency = appConfig.Queue.Concurrency
	}
	if flag.Lookup("queue-retry").DefValue == fmt.Sprint(cfg.QueueRetryLimit) && appConfig.Queue.RetryLimit > 0 {
		cfg.QueueRetryLimit = appConfig.Queue.RetryLimit
	}
	if appConfig.Queue.RetryDelay > 0 {
		cfg.QueueRetryDelay = time.Duration(appConfig.Queue.RetryDelay) * time.Second
	}

	// 日志配置
	if appConfig.Log.Level != "" {
		cfg.LogLevel = appConfig.Log.Level
	}
	if appConfig.Log.File != "" {
		cfg.LogFile = appConfig.Log.File
	}
}

// setupLogger 设置日志系统
func setupLogger(level string, file string) *logrus.Logger {
	middleware.ConfigureLogOutput(file, level)
	return middleware.GetLogger()
}

// setupCache 设置缓存服务
func setupCache(cfg config) (cache.Cache, error) {
	cacheConfig := cache.Config{
		Type:            cfg.CacheType,
		DefaultTTL:      cfg.CacheTTL,
		CleanupInterval: 10 * time.Minute,
	}

	// 如果配置了Redis，添加Redis配置
	if cfg.CacheType == "redis" {
		cacheConfig.RedisAddr = cfg.RedisAddr
		cacheConfig.RedisPassword = cfg.RedisPassword
		// Redis数据库编号默认为0
	}

	return cache.NewCache(cacheConfig)
}

// setupPageStore 设置页面快照存储
func setupPageStore(cfg config, appConfig *appconfig.Config) (pagestore.Store, error) {
	if cfg.PageStoreType == "minio" {
		if appConfig == nil {
			return nil, fmt.Errorf("minio page store requires a config file")
		}
		return pagestore.NewMinioStore(pagestore.MinioConfig{
			Endpoint:  appConfig.PageStore.Endpoint,
			AccessKey: appConfig.PageStore.AccessKey,
			SecretKey: appConfig.PageStore.SecretKey,
			Bucket:    appConfig.PageStore.Bucket,
			UseSSL:    appConfig.PageStore.UseSSL,
		})
	}

	return pagestore.NewLocalStore(pagestore.LocalConfig{
		Path: cfg.PageStorePath,
	})
}

// setupTranslator 设置翻译提供商
// 当前未接入外部翻译服务，释义按原文返回
func setupTranslator(appConfig *appconfig.Config, logger *logrus.Logger) services.Translator {
	if appConfig == nil || appConfig.Translate.Provider == "" {
		return nil
	}

	logger.WithField("provider", appConfig.Translate.Provider).
		Warn("Unknown translation provider, falling back to passthrough")
	return nil
}

// setupDatabase 设置数据库
func setupDatabase(cfg config, logger *logrus.Logger) error {
	dbPath := filepath.Join(cfg.DataDir, "valmiki.db")

	// 确保数据目录存在
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %v", err)
	}

	// 初始化数据库
	dbConfig := &database.Config{
		Type: "sqlite",
		DSN:  dbPath,
	}

	return database.Setup(dbConfig, logger)
}

// setupTaskQueue 设置任务队列和预取工作者
func setupTaskQueue(
	cfg config,
	readerService *services.ReaderService,
	statsService *services.StatsService,
	logger *logrus.Logger,
) (taskqueue.Queue, taskqueue.Worker, error) {
	// 根据配置创建任务队列
	queueConfig := taskqueue.DefaultConfig()
	queueConfig.RedisAddr = cfg.RedisAddr
	queueConfig.RedisPassword = cfg.RedisPassword
	queueConfig.RedisDB = cfg.RedisDB
	queueConfig.Concurrency = cfg.QueueConcurrency
	queueConfig.RetryLimit = cfg.QueueRetryLimit
	queueConfig.RetryDelay = cfg.QueueRetryDelay

	logger.WithFields(logrus.Fields{
		"type":        cfg.QueueType,
		"redis_addr":  cfg.RedisAddr,
		"concurrency": cfg.QueueConcurrency,
		"retry_limit": cfg.QueueRetryLimit,
	}).Info("Setting up task queue")

	queue, err := taskqueue.NewQueue(cfg.QueueType, queueConfig)
	if err != nil {
		return nil, nil, err
	}

	redisQueue, ok := queue.(*taskqueue.RedisQueue)
	if !ok {
		queue.Close()
		return nil, nil, fmt.Errorf("unsupported queue type for worker: %s", cfg.QueueType)
	}

	worker := taskqueue.NewRedisWorker(redisQueue, queueConfig)
	prefetchHandler := taskqueue.NewPrefetchHandler(readerService, statsService, logger)
	for _, taskType := range prefetchHandler.GetTaskTypes() {
		worker.RegisterHandler(taskType, prefetchHandler)
	}

	return queue, worker, nil
}
