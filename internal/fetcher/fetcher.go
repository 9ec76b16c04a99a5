package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fyerfyer/valmiki-reader/internal/models"
	"github.com/fyerfyer/valmiki-reader/internal/sloka"
)

// DefaultBaseURL 原站的诗节列表页地址
const DefaultBaseURL = "https://www.valmiki.iitk.ac.in/sloka"

// Config 抓取器配置
type Config struct {
	BaseURL   string        // 列表页基础地址
	Timeout   time.Duration // 单次请求超时
	UserAgent string        // 请求UA
}

// DefaultConfig 返回默认抓取器配置
func DefaultConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Timeout: 30 * time.Second,
	}
}

// Fetcher 页面抓取器接口
// 给定 (kanda, sarga, script) 返回原始页面内容
type Fetcher interface {
	// FetchPage 抓取一章的列表页HTML
	FetchPage(ctx context.Context, kanda, sarga int, script sloka.Script) (string, error)
}

// PageFetcher 基于resty的页面抓取器实现
type PageFetcher struct {
	client  *resty.Client
	baseURL string
}

// NewPageFetcher 创建页面抓取器
func NewPageFetcher(cfg *Config) *PageFetcher {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	client := resty.New()
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}

	return &PageFetcher{
		client:  client,
		baseURL: cfg.BaseURL,
	}
}

// FetchPage 抓取一章的列表页HTML
// 页面地址按 {base}?field_kanda_tid={kanda}&language={script}&field_sarga_value={sarga} 构造；
// 上游404归为章不存在，其余非200和网络错误归为上游抓取失败，两类错误调用方可分别处理
func (f *PageFetcher) FetchPage(ctx context.Context, kanda, sarga int, script sloka.Script) (string, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"field_kanda_tid":   fmt.Sprint(kanda),
			"language":          string(script),
			"field_sarga_value": fmt.Sprint(sarga),
		}).
		Get(f.baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUpstreamFetch, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return "", fmt.Errorf("%w: kanda %d sarga %d", models.ErrSargaNotFound, kanda, sarga)
	case resp.StatusCode() != http.StatusOK:
		return "", fmt.Errorf("%w: unexpected status %d", models.ErrUpstreamFetch, resp.StatusCode())
	}

	return resp.String(), nil
}
