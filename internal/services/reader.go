package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/fyerfyer/valmiki-reader/internal/cache"
	"github.com/fyerfyer/valmiki-reader/internal/fetcher"
	"github.com/fyerfyer/valmiki-reader/internal/models"
	"github.com/fyerfyer/valmiki-reader/internal/repository"
	"github.com/fyerfyer/valmiki-reader/internal/sloka"
	"github.com/fyerfyer/valmiki-reader/pkg/pagestore"
)

// ReaderService 阅读服务
// 负责按 (kanda, sarga, script) 加载一章，内部分四层：
// 缓存 → 数据库 → 页面快照 → 上游抓取；命中任意一层就不再往下走
type ReaderService struct {
	fetcher  fetcher.Fetcher            // 页面抓取器
	cache    cache.Cache                // 解析结果缓存
	repo     repository.SlokaRepository // 诗节仓储
	pages    pagestore.Store            // 页面快照存储，可为nil
	cacheTTL time.Duration              // 缓存有效期
	logger   *logrus.Logger             // 日志记录器
}

// ReaderOption 阅读服务配置选项
type ReaderOption func(*ReaderService)

// NewReaderService 创建阅读服务实例
func NewReaderService(
	f fetcher.Fetcher,
	c cache.Cache,
	repo repository.SlokaRepository,
	opts ...ReaderOption,
) *ReaderService {
	service := &ReaderService{
		fetcher:  f,
		cache:    c,
		repo:     repo,
		cacheTTL: time.Hour, // 默认缓存1小时
		logger:   logrus.New(),
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// WithPageStore 设置页面快照存储
func WithPageStore(store pagestore.Store) ReaderOption {
	return func(s *ReaderService) {
		s.pages = store
	}
}

// WithReaderCacheTTL 设置解析结果的缓存时间
func WithReaderCacheTTL(ttl time.Duration) ReaderOption {
	return func(s *ReaderService) {
		s.cacheTTL = ttl
	}
}

// WithReaderLogger 设置日志记录器
func WithReaderLogger(logger *logrus.Logger) ReaderOption {
	return func(s *ReaderService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Sarga 加载一章
// 解析出 0 个诗节按章不存在处理（ErrSargaNotFound），与抓取失败可区分
func (s *ReaderService) Sarga(ctx context.Context, kanda, sarga int, script sloka.Script) (*sloka.Sarga, error) {
	if kanda <= 0 || sarga <= 0 {
		return nil, fmt.Errorf("%w: kanda %d sarga %d", models.ErrSargaNotFound, kanda, sarga)
	}
	if !script.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidScript, script)
	}

	// 1. 缓存层
	cacheKey := sargaCacheKey(kanda, sarga, script)
	if cached, found, err := s.cache.Get(cacheKey); err != nil {
		// 缓存后端故障时降级到数据库，但要留下日志
		s.logger.WithError(err).WithField("key", cacheKey).Warn("Cache backend error, falling through")
	} else if found {
		var slokas []sloka.Sloka
		if err := json.Unmarshal([]byte(cached), &slokas); err == nil {
			return sloka.NewSarga(kanda, sarga, script, slokas), nil
		}
		// 缓存内容损坏时当作未命中，继续往下走
		s.logger.WithField("key", cacheKey).Warn("Failed to decode cached sarga, falling through")
	}

	// 2. 数据库层
	rows, err := s.repo.GetSarga(kanda, sarga, string(script))
	if err != nil {
		return nil, fmt.Errorf("failed to load sarga from store: %w", err)
	}
	if len(rows) > 0 {
		slokas := rowsToSlokas(rows)
		s.cacheSarga(cacheKey, slokas)
		return sloka.NewSarga(kanda, sarga, script, slokas), nil
	}

	// 3. 页面快照层
	if s.pages != nil {
		key := pagestore.PageKey{Kanda: kanda, Sarga: sarga, Script: script}
		if page, found, err := s.pages.Get(key); err == nil && found {
			return s.parseAndStore(kanda, sarga, script, page, false)
		}
	}

	// 4. 上游抓取
	page, err := s.fetcher.FetchPage(ctx, kanda, sarga, script)
	if err != nil {
		return nil, err
	}
	return s.parseAndStore(kanda, sarga, script, page, true)
}

// LoadSarga 加载一章（任务处理器使用的别名，加载即持久化）
func (s *ReaderService) LoadSarga(ctx context.Context, kanda, sarga int, script sloka.Script) (*sloka.Sarga, error) {
	return s.Sarga(ctx, kanda, sarga, script)
}

// parseAndStore 解析页面并写入各层
// snapshot 为 true 时把原始页面也存一份快照
func (s *ReaderService) parseAndStore(kanda, sarga int, script sloka.Script, page string, snapshot bool) (*sloka.Sarga, error) {
	parsed, err := sloka.ParseSargaHTML(page, kanda, sarga, script)
	if err != nil {
		return nil, err
	}

	// 一个诗节都没有：按章不存在处理，不落库也不缓存
	if parsed.Len() == 0 {
		return nil, fmt.Errorf("%w: kanda %d sarga %d has no slokas", models.ErrSargaNotFound, kanda, sarga)
	}

	if snapshot && s.pages != nil {
		key := pagestore.PageKey{Kanda: kanda, Sarga: sarga, Script: script}
		if err := s.pages.Save(key, page); err != nil {
			// 快照失败不影响主流程
			s.logger.WithError(err).WithField("key", key.String()).Warn("Failed to save page snapshot")
		}
	}

	slokas := parsed.Slokas()
	if err := s.repo.ReplaceSarga(kanda, sarga, string(script), slokasToRows(kanda, sarga, script, slokas)); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"kanda": kanda,
			"sarga": sarga,
		}).Warn("Failed to persist parsed sarga")
	}

	s.cacheSarga(sargaCacheKey(kanda, sarga, script), slokas)
	return parsed, nil
}

// cacheSarga 将解析结果写入缓存，失败只记日志
func (s *ReaderService) cacheSarga(key string, slokas []sloka.Sloka) {
	data, err := json.Marshal(slokas)
	if err != nil {
		return
	}
	if err := s.cache.Set(key, string(data), s.cacheTTL); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to cache sarga")
	}
}

// SlokaRef 一个诗节的导航引用（节号1起始）
type SlokaRef struct {
	Kanda int `json:"kanda"`
	Sarga int `json:"sarga"`
	Sloka int `json:"sloka"`
}

// SlokaView 单节阅读视图
// Prev 在第一卷第一章第一节处为 nil；Next 在章尾指向下一章第一节（假定存在）
type SlokaView struct {
	Record sloka.Sloka `json:"record"`         // 诗节记录
	Total  int         `json:"total"`          // 本章诗节总数
	Prev   *SlokaRef   `json:"prev,omitempty"` // 上一节引用
	Next   *SlokaRef   `json:"next,omitempty"` // 下一节引用
}

// Sloka 加载单节阅读视图
// slokaNum 是 1 起始的节号；越界返回 ErrSlokaNotFound
func (s *ReaderService) Sloka(ctx context.Context, kanda, sarga, slokaNum int, script sloka.Script) (*SlokaView, error) {
	loaded, err := s.Sarga(ctx, kanda, sarga, script)
	if err != nil {
		return nil, err
	}

	if slokaNum < 1 || slokaNum > loaded.Len() {
		return nil, fmt.Errorf("%w: sloka %d of %d.%d (1-%d)",
			models.ErrSlokaNotFound, slokaNum, kanda, sarga, loaded.Len())
	}

	record, err := loaded.Get(slokaNum - 1)
	if err != nil {
		return nil, err
	}

	view := &SlokaView{
		Record: record,
		Total:  loaded.Len(),
	}

	// 上一节：章内直接减一，章首跨到上一章的最后一节
	switch {
	case slokaNum > 1:
		view.Prev = &SlokaRef{Kanda: kanda, Sarga: sarga, Sloka: slokaNum - 1}
	case sarga > 1:
		if prev, err := s.Sarga(ctx, kanda, sarga-1, script); err == nil && prev.Len() > 0 {
			view.Prev = &SlokaRef{Kanda: kanda, Sarga: sarga - 1, Sloka: prev.Len()}
		} else if err != nil && !errors.Is(err, models.ErrSargaNotFound) {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"kanda": kanda,
				"sarga": sarga - 1,
			}).Warn("Failed to load previous sarga for navigation")
		}
	}

	// 下一节：章内直接加一，章尾指向下一章第一节（存在与否由下次加载判定）
	if slokaNum < loaded.Len() {
		view.Next = &SlokaRef{Kanda: kanda, Sarga: sarga, Sloka: slokaNum + 1}
	} else {
		view.Next = &SlokaRef{Kanda: kanda, Sarga: sarga + 1, Sloka: 1}
	}

	return view, nil
}

// InvalidateSarga 失效一章的缓存（规则调整或人工修正后使用）
func (s *ReaderService) InvalidateSarga(kanda, sarga int, script sloka.Script) error {
	return s.cache.Delete(sargaCacheKey(kanda, sarga, script))
}

// sargaCacheKey 生成一章解析结果的缓存键
func sargaCacheKey(kanda, sarga int, script sloka.Script) string {
	return cache.GenerateCacheKey("sarga",
		fmt.Sprint(kanda), fmt.Sprint(sarga), string(script))
}

// rowsToSlokas 将持久化记录还原为诗节
func rowsToSlokas(rows []*models.SlokaRow) []sloka.Sloka {
	slokas := make([]sloka.Sloka, 0, len(rows))
	for _, row := range rows {
		record := sloka.Sloka{
			Number:   row.NumberText,
			Position: int(row.Position),
			Text:     row.Text,
			Meaning:  row.Meaning,
		}
		if ref, ok := sloka.ParseRef(row.NumberText); ok {
			record.Ref = ref
			record.HasRef = true
		}
		if len(row.Glossary) > 0 {
			// 释义表损坏只丢失该节的逐词释义，不影响正文
			_ = json.Unmarshal(row.Glossary, &record.Glossary)
		}
		slokas = append(slokas, record)
	}
	return slokas
}

// slokasToRows 将诗节转换为持久化记录
func slokasToRows(kanda, sarga int, script sloka.Script, slokas []sloka.Sloka) []*models.SlokaRow {
	rows := make([]*models.SlokaRow, 0, len(slokas))
	for _, record := range slokas {
		row := &models.SlokaRow{
			Kanda:      uint(kanda),
			Sarga:      uint(sarga),
			Script:     string(script),
			Position:   uint(record.Position),
			NumberText: record.Number,
			Text:       record.Text,
			Meaning:    record.Meaning,
		}
		if len(record.Glossary) > 0 {
			if data, err := json.Marshal(record.Glossary); err == nil {
				row.Glossary = datatypes.JSON(data)
			}
		}
		rows = append(rows, row)
	}
	return rows
}
