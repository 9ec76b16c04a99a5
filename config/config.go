package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用程序配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Source    SourceConfig    `mapstructure:"source"`
	PageStore PageStoreConfig `mapstructure:"pagestore"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Reader    ReaderConfig    `mapstructure:"reader"`
	Translate TranslateConfig `mapstructure:"translate"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"` // 服务器主机
	Port int    `mapstructure:"port"` // 服务器端口
}

// SourceConfig 上游站点抓取配置
type SourceConfig struct {
	BaseURL   string        `mapstructure:"base_url"`   // 列表页基础地址
	Timeout   time.Duration `mapstructure:"timeout"`    // 单次请求超时
	UserAgent string        `mapstructure:"user_agent"` // 请求UA
}

// PageStoreConfig 页面快照存储配置
type PageStoreConfig struct {
	Enable    bool   `mapstructure:"enable"`   // 是否启用页面快照
	Type      string `mapstructure:"type"`     // 存储类型：local 或 minio
	Path      string `mapstructure:"path"`     // 本地存储路径
	Bucket    string `mapstructure:"bucket"`   // MinIO桶名称
	Endpoint  string `mapstructure:"endpoint"` // MinIO端点
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"` // 是否使用SSL
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Enable   bool   `mapstructure:"enable"`   // 是否启用缓存
	Type     string `mapstructure:"type"`     // 缓存类型：memory 或 redis
	Address  string `mapstructure:"address"`  // Redis地址
	Password string `mapstructure:"password"` // Redis密码
	DB       int    `mapstructure:"db"`       // Redis数据库
	TTL      int    `mapstructure:"ttl"`      // 缓存TTL（秒）
}

// QueueConfig 任务队列配置
type QueueConfig struct {
	Enable        bool   `mapstructure:"enable"`         // 是否启用任务队列
	Type          string `mapstructure:"type"`           // 队列类型：redis
	RedisAddr     string `mapstructure:"redis_addr"`     // Redis地址
	RedisPassword string `mapstructure:"redis_password"` // Redis密码
	RedisDB       int    `mapstructure:"redis_db"`       // Redis数据库编号
	Concurrency   int    `mapstructure:"concurrency"`    // 任务处理并发数
	RetryLimit    int    `mapstructure:"retry_limit"`    // 任务最大重试次数
	RetryDelay    int    `mapstructure:"retry_delay"`    // 重试延迟(秒)
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type string `mapstructure:"type"` // 数据库类型: sqlite
	DSN  string `mapstructure:"dsn"`  // 数据源名称
}

// ReaderConfig 章节阅读配置
type ReaderConfig struct {
	DefaultScript string `mapstructure:"default_script"` // 默认文字版本：te 或 dv
	CacheTTL      int    `mapstructure:"cache_ttl"`      // 章解析结果缓存TTL（秒）
}

// TranslateConfig 释义翻译配置
type TranslateConfig struct {
	Provider string `mapstructure:"provider"`  // 翻译提供商，为空时原样返回
	APIKey   string `mapstructure:"api_key"`   // API密钥
	Endpoint string `mapstructure:"endpoint"`  // API端点
	CacheTTL int    `mapstructure:"cache_ttl"` // 翻译结果缓存TTL（秒）
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"` // 日志级别
	File  string `mapstructure:"file"`  // 日志文件路径，为空时仅输出到标准输出
}

// Load 从文件和环境变量加载配置
func Load(configPath string) (*Config, error) {
	var config Config

	// 设置默认配置路径
	if configPath == "" {
		configPath = "config.yaml" // 默认在当前目录寻找config.yaml
	}

	// 初始化viper
	v := viper.New()

	// 设置配置文件路径和类型
	v.SetConfigFile(configPath)

	// 尝试读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// 如果找不到配置文件，创建一个默认配置文件
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: Config file not found at %s, using defaults", configPath)
			setDefaults(v)
			// 创建默认配置文件
			dir := filepath.Dir(configPath)
			if err := os.MkdirAll(dir, 0755); err == nil {
				if err := v.WriteConfigAs(configPath); err != nil {
					log.Printf("Warning: Could not write default config to %s: %v", configPath, err)
				}
			}
		} else {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	// 设置默认值
	setDefaults(v)

	// 支持环境变量覆盖
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 解析配置到结构体
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	// 处理配置项中的环境变量占位符
	resConfig := processEnvironmentVariables(&config)

	return resConfig, nil
}

// processEnvironmentVariables 展开形如 ${VAR} 的配置占位符
func processEnvironmentVariables(cfg *Config) *Config {
	// 处理翻译API密钥
	if strings.HasPrefix(cfg.Translate.APIKey, "${") && strings.HasSuffix(cfg.Translate.APIKey, "}") {
		envVar := cfg.Translate.APIKey[2 : len(cfg.Translate.APIKey)-1]
		if envVal := os.Getenv(envVar); envVal != "" {
			cfg.Translate.APIKey = envVal
		}
	}

	// 处理MinIO访问密钥
	if strings.HasPrefix(cfg.PageStore.SecretKey, "${") && strings.HasSuffix(cfg.PageStore.SecretKey, "}") {
		envVar := cfg.PageStore.SecretKey[2 : len(cfg.PageStore.SecretKey)-1]
		if envVal := os.Getenv(envVar); envVal != "" {
			cfg.PageStore.SecretKey = envVal
		}
	}

	return cfg
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	// 上游站点默认配置
	v.SetDefault("source.base_url", "https://www.valmiki.iitk.ac.in/sloka")
	v.SetDefault("source.timeout", "30s")

	// 页面快照默认配置
	v.SetDefault("pagestore.enable", true)
	v.SetDefault("pagestore.type", "local")
	v.SetDefault("pagestore.path", "./pages")
	v.SetDefault("pagestore.bucket", "valmiki-pages")
	v.SetDefault("pagestore.use_ssl", false)

	// 缓存默认配置
	v.SetDefault("cache.enable", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", 3600) // 1小时

	// 队列默认配置
	v.SetDefault("queue.enable", false)
	v.SetDefault("queue.type", "redis")
	v.SetDefault("queue.redis_addr", "localhost:6379")
	v.SetDefault("queue.redis_db", 0)
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("queue.retry_limit", 3)
	v.SetDefault("queue.retry_delay", 60) // 60秒

	// 数据库默认配置
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "data/valmiki.db")

	// 阅读默认配置
	v.SetDefault("reader.default_script", "te")
	v.SetDefault("reader.cache_ttl", 3600) // 1小时

	// 翻译默认配置
	v.SetDefault("translate.provider", "")
	v.SetDefault("translate.cache_ttl", 604800) // 7天

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}
