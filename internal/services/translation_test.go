package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/valmiki-reader/internal/cache"
	"github.com/fyerfyer/valmiki-reader/internal/models"
)

// fakeTranslator 固定前缀的翻译提供方，记录调用次数
type fakeTranslator struct {
	calls int
	err   error
}

func (f *fakeTranslator) Translate(ctx context.Context, text string, targetLang string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "[" + targetLang + "] " + text, nil
}

func setupTranslationTest(t *testing.T, translator Translator) *TranslationService {
	memCache, err := cache.NewMemoryCache(cache.DefaultConfig())
	require.NoError(t, err)
	return NewTranslationService(translator, memCache)
}

func TestTranslationMeaning_Passthrough(t *testing.T) {
	translator := &fakeTranslator{}
	service := setupTranslationTest(t, translator)
	ctx := context.Background()

	// 英语和空原文不经过提供方
	got, err := service.Meaning(ctx, LangEnglish, "the great sage")
	require.NoError(t, err)
	assert.Equal(t, "the great sage", got)

	got, err = service.Meaning(ctx, LangTelugu, "")
	require.NoError(t, err)
	assert.Equal(t, "", got)
	assert.Equal(t, 0, translator.calls)
}

func TestTranslationMeaning_NilProvider(t *testing.T) {
	service := setupTranslationTest(t, nil)

	got, err := service.Meaning(context.Background(), LangTelugu, "the great sage")
	require.NoError(t, err)
	assert.Equal(t, "the great sage", got)
}

func TestTranslationMeaning_CachesResult(t *testing.T) {
	translator := &fakeTranslator{}
	service := setupTranslationTest(t, translator)
	ctx := context.Background()

	got, err := service.Meaning(ctx, LangTelugu, "the great sage")
	require.NoError(t, err)
	assert.Equal(t, "[te] the great sage", got)
	assert.Equal(t, 1, translator.calls)

	// 同一 (语言, 原文) 只调用一次提供方
	got, err = service.Meaning(ctx, LangTelugu, "the great sage")
	require.NoError(t, err)
	assert.Equal(t, "[te] the great sage", got)
	assert.Equal(t, 1, translator.calls)

	// 换语言是另一个缓存键
	got, err = service.Meaning(ctx, LangTelangana, "the great sage")
	require.NoError(t, err)
	assert.Equal(t, "[tg] the great sage", got)
	assert.Equal(t, 2, translator.calls)
}

func TestTranslationMeaning_FallbackOnFailure(t *testing.T) {
	translator := &fakeTranslator{err: errors.New("provider unavailable")}
	service := setupTranslationTest(t, translator)
	ctx := context.Background()

	// 提供方失败退回原文，不算错误
	got, err := service.Meaning(ctx, LangTelugu, "the great sage")
	require.NoError(t, err)
	assert.Equal(t, "the great sage", got)

	// 失败不缓存，下次还会重试
	translator.err = nil
	got, err = service.Meaning(ctx, LangTelugu, "the great sage")
	require.NoError(t, err)
	assert.Equal(t, "[te] the great sage", got)
	assert.Equal(t, 2, translator.calls)
}

func TestTranslationMeaning_InvalidLanguage(t *testing.T) {
	service := setupTranslationTest(t, nil)

	_, err := service.Meaning(context.Background(), "fr", "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidLanguage)
}

func TestValidLanguage(t *testing.T) {
	assert.True(t, ValidLanguage(LangEnglish))
	assert.True(t, ValidLanguage(LangTelugu))
	assert.True(t, ValidLanguage(LangTelangana))
	assert.False(t, ValidLanguage(""))
	assert.False(t, ValidLanguage("fr"))
}
