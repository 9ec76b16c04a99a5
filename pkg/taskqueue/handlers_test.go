package taskqueue

import (
	"context"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/valmiki-reader/internal/models"
	"github.com/fyerfyer/valmiki-reader/internal/sloka"
)

// fakeLoader 固定章数的假加载器
// sargas 映射章号到诗节数，不存在的章返回 ErrSargaNotFound
type fakeLoader struct {
	sargas     map[int]int
	prefix     string // 非空时首节编号使用此前缀覆盖默认的 kanda.sarga.
	unnumbered bool   // 为真时所有诗节都不带编号
	loadCalls  int
	failSarga  int // 该章号始终返回抓取错误
}

func (f *fakeLoader) LoadSarga(ctx context.Context, kanda, sarga int, script sloka.Script) (*sloka.Sarga, error) {
	f.loadCalls++
	if sarga == f.failSarga {
		return nil, fmt.Errorf("%w: boom", models.ErrUpstreamFetch)
	}
	count, ok := f.sargas[sarga]
	if !ok {
		return nil, fmt.Errorf("%w: kanda %d sarga %d", models.ErrSargaNotFound, kanda, sarga)
	}

	slokas := make([]sloka.Sloka, count)
	for i := range slokas {
		number := ""
		if !f.unnumbered {
			prefix := f.prefix
			if prefix == "" {
				prefix = fmt.Sprintf("%d.%d.", kanda, sarga)
			}
			number = fmt.Sprintf("%s%d", prefix, i+1)
		}
		slokas[i] = sloka.Sloka{
			Number:   number,
			Position: i,
			Text:     "verse",
		}
	}
	return sloka.NewSarga(kanda, sarga, script, slokas), nil
}

// fakeStats 记录统计写入的假实现
type fakeStats struct {
	counts     map[int]int // 章号 -> 诗节数
	recomputed []int
}

func newFakeStats() *fakeStats {
	return &fakeStats{counts: make(map[int]int)}
}

func (f *fakeStats) RecordSargaCount(kanda, sarga, slokaCount int) error {
	f.counts[sarga] = slokaCount
	return nil
}

func (f *fakeStats) RecomputeKanda(kanda int) error {
	f.recomputed = append(f.recomputed, kanda)
	return nil
}

func makeTask(t *testing.T, taskType TaskType, payload interface{}) *Task {
	data, err := MarshalPayload(payload)
	require.NoError(t, err)
	return &Task{
		ID:      "test-task",
		Type:    taskType,
		Payload: data,
	}
}

// TestPrefetchHandler_SargaPrefetch 测试单章预取任务
func TestPrefetchHandler_SargaPrefetch(t *testing.T) {
	loader := &fakeLoader{sargas: map[int]int{5: 42}}
	stats := newFakeStats()
	handler := NewPrefetchHandler(loader, stats, logrus.New())

	task := makeTask(t, TaskSargaPrefetch, SargaPrefetchPayload{Kanda: 1, Sarga: 5, Script: "te"})
	err := handler.ProcessTask(context.Background(), task)
	require.NoError(t, err)

	// 预取后章统计被写入
	assert.Equal(t, 42, stats.counts[5])
}

// TestPrefetchHandler_SargaPrefetchNotFound 测试预取不存在的章
func TestPrefetchHandler_SargaPrefetchNotFound(t *testing.T) {
	loader := &fakeLoader{sargas: map[int]int{}}
	handler := NewPrefetchHandler(loader, newFakeStats(), logrus.New())

	task := makeTask(t, TaskSargaPrefetch, SargaPrefetchPayload{Kanda: 1, Sarga: 99, Script: "te"})
	err := handler.ProcessTask(context.Background(), task)
	assert.ErrorIs(t, err, models.ErrSargaNotFound)
}

// TestPrefetchHandler_FirstSlokaMismatch 测试首节编号前缀校验
// 上游对越界章号会回退到别的章，靠编号前缀识破
func TestPrefetchHandler_FirstSlokaMismatch(t *testing.T) {
	loader := &fakeLoader{
		sargas: map[int]int{5: 10},
		prefix: "1.1.", // 声称是第5章，实际返回第1章的内容
	}
	stats := newFakeStats()
	handler := NewPrefetchHandler(loader, stats, logrus.New())

	task := makeTask(t, TaskSargaPrefetch, SargaPrefetchPayload{Kanda: 1, Sarga: 5, Script: "te"})
	err := handler.ProcessTask(context.Background(), task)
	assert.Error(t, err)

	// 校验失败时不写统计
	assert.Empty(t, stats.counts)
}

// TestPrefetchHandler_UnnumberedSarga 测试整章无编号时的宽容处理
// 接受结果并写统计，但要留下告警日志
func TestPrefetchHandler_UnnumberedSarga(t *testing.T) {
	loader := &fakeLoader{
		sargas:     map[int]int{5: 12},
		unnumbered: true,
	}
	stats := newFakeStats()
	logger, hook := logtest.NewNullLogger()
	handler := NewPrefetchHandler(loader, stats, logger)

	task := makeTask(t, TaskSargaPrefetch, SargaPrefetchPayload{Kanda: 1, Sarga: 5, Script: "te"})
	err := handler.ProcessTask(context.Background(), task)
	require.NoError(t, err)

	assert.Equal(t, 12, stats.counts[5])

	var warned bool
	for _, entry := range hook.Entries {
		if entry.Level == logrus.WarnLevel && entry.Data["kanda"] == 1 && entry.Data["sarga"] == 5 {
			warned = true
		}
	}
	assert.True(t, warned, "expected a warning carrying kanda and sarga")
}

// TestPrefetchHandler_InvalidPayload 测试残缺载荷
func TestPrefetchHandler_InvalidPayload(t *testing.T) {
	handler := NewPrefetchHandler(&fakeLoader{}, newFakeStats(), logrus.New())

	task := makeTask(t, TaskSargaPrefetch, SargaPrefetchPayload{Kanda: 0, Sarga: 5})
	err := handler.ProcessTask(context.Background(), task)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

// TestPrefetchHandler_KandaScan 测试整卷扫描
func TestPrefetchHandler_KandaScan(t *testing.T) {
	// 三章存在，第四章不存在即卷尾
	loader := &fakeLoader{sargas: map[int]int{1: 10, 2: 20, 3: 30}}
	stats := newFakeStats()
	handler := NewPrefetchHandler(loader, stats, logrus.New())

	task := makeTask(t, TaskKandaScan, KandaScanPayload{Kanda: 1, MaxSarga: 50, Script: "te"})
	err := handler.ProcessTask(context.Background(), task)
	require.NoError(t, err)

	// 每章的统计都被写入
	assert.Equal(t, map[int]int{1: 10, 2: 20, 3: 30}, stats.counts)

	// 扫到卷尾就停，不会探测到上限
	assert.Equal(t, 4, loader.loadCalls)

	// 扫描结束后刷新卷级汇总
	assert.Equal(t, []int{1}, stats.recomputed)
}

// TestPrefetchHandler_KandaScanTolerantOfFailures 测试单章失败不中断扫描
func TestPrefetchHandler_KandaScanTolerantOfFailures(t *testing.T) {
	loader := &fakeLoader{
		sargas:    map[int]int{1: 10, 2: 20, 3: 30},
		failSarga: 2,
	}
	stats := newFakeStats()
	handler := NewPrefetchHandler(loader, stats, logrus.New())

	task := makeTask(t, TaskKandaScan, KandaScanPayload{Kanda: 1, Script: "te"})
	err := handler.ProcessTask(context.Background(), task)
	require.NoError(t, err)

	// 失败的第2章没有统计，后续章照常扫描
	assert.Equal(t, 10, stats.counts[1])
	assert.NotContains(t, stats.counts, 2)
	assert.Equal(t, 30, stats.counts[3])
	assert.Equal(t, []int{1}, stats.recomputed)
}

// TestPrefetchHandler_GetTaskTypes 测试处理器声明的任务类型
func TestPrefetchHandler_GetTaskTypes(t *testing.T) {
	handler := NewPrefetchHandler(&fakeLoader{}, newFakeStats(), logrus.New())
	assert.ElementsMatch(t, []TaskType{TaskSargaPrefetch, TaskKandaScan}, handler.GetTaskTypes())
}
