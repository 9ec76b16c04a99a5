package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/valmiki-reader/internal/cache"
	"github.com/fyerfyer/valmiki-reader/internal/models"
)

// 支持的阅读语言
const (
	// LangEnglish 英语：释义原文直接透传
	LangEnglish = "en"
	// LangTelugu 泰卢固语
	LangTelugu = "te"
	// LangTelangana 泰兰加纳方言
	LangTelangana = "tg"
)

// ValidLanguage 检查阅读语言是否受支持
func ValidLanguage(lang string) bool {
	switch lang {
	case LangEnglish, LangTelugu, LangTelangana:
		return true
	}
	return false
}

// Translator 翻译提供方接口
// 对本服务完全不透明，给定 (原文, 目标语言) 返回译文或失败
type Translator interface {
	Translate(ctx context.Context, text string, targetLang string) (string, error)
}

// TranslationService 翻译服务
// 在不透明的翻译提供方外面包一层显式注入的缓存，键为 (目标语言, 原文)
type TranslationService struct {
	translator Translator     // 翻译提供方，可为nil
	cache      cache.Cache    // 译文缓存
	cacheTTL   time.Duration  // 缓存有效期
	logger     *logrus.Logger // 日志记录器
}

// TranslationOption 翻译服务配置选项
type TranslationOption func(*TranslationService)

// NewTranslationService 创建翻译服务实例
// translator 为 nil 时服务退化为透传：原文原样返回，不算错误
func NewTranslationService(translator Translator, c cache.Cache, opts ...TranslationOption) *TranslationService {
	service := &TranslationService{
		translator: translator,
		cache:      c,
		cacheTTL:   7 * 24 * time.Hour, // 译文基本不变，默认缓存7天
		logger:     logrus.New(),
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// WithTranslationCacheTTL 设置译文缓存时间
func WithTranslationCacheTTL(ttl time.Duration) TranslationOption {
	return func(s *TranslationService) {
		s.cacheTTL = ttl
	}
}

// WithTranslationLogger 设置日志记录器
func WithTranslationLogger(logger *logrus.Logger) TranslationOption {
	return func(s *TranslationService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Meaning 返回释义在目标阅读语言下的文本
// 英语和空原文直接透传；缓存命中不调用提供方；提供方失败时回退到原文
func (s *TranslationService) Meaning(ctx context.Context, targetLang string, text string) (string, error) {
	if !ValidLanguage(targetLang) {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidLanguage, targetLang)
	}
	if targetLang == LangEnglish || text == "" {
		return text, nil
	}
	if s.translator == nil {
		// 未配置翻译提供方时原样返回
		return text, nil
	}

	cacheKey := cache.GenerateCacheKey("translate", targetLang, text)
	if cached, found, err := s.cache.Get(cacheKey); err == nil && found {
		return cached, nil
	}

	translated, err := s.translator.Translate(ctx, text, targetLang)
	if err != nil {
		s.logger.WithError(err).WithField("lang", targetLang).Warn("Translation failed, falling back to source text")
		return text, nil
	}

	if err := s.cache.Set(cacheKey, translated, s.cacheTTL); err != nil {
		s.logger.WithError(err).Warn("Failed to cache translation")
	}

	return translated, nil
}
