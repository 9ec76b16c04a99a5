package taskqueue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/valmiki-reader/internal/models"
	"github.com/fyerfyer/valmiki-reader/internal/sloka"
)

// SargaLoader 章加载接口
// 由阅读服务实现：加载即持久化，预取任务完成后读取请求无需再抓上游
type SargaLoader interface {
	LoadSarga(ctx context.Context, kanda, sarga int, script sloka.Script) (*sloka.Sarga, error)
}

// StatsRecorder 统计写入接口
type StatsRecorder interface {
	RecordSargaCount(kanda, sarga, slokaCount int) error
	RecomputeKanda(kanda int) error
}

// PrefetchHandler 预取任务处理器
// 处理单章预取和整卷扫描两类任务
type PrefetchHandler struct {
	loader SargaLoader    // 章加载服务
	stats  StatsRecorder  // 统计写入服务
	logger *logrus.Logger // 日志记录器
}

// NewPrefetchHandler 创建预取任务处理器
func NewPrefetchHandler(loader SargaLoader, stats StatsRecorder, logger *logrus.Logger) *PrefetchHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &PrefetchHandler{
		loader: loader,
		stats:  stats,
		logger: logger,
	}
}

// GetTaskTypes 返回此处理器支持的任务类型
func (h *PrefetchHandler) GetTaskTypes() []TaskType {
	return []TaskType{TaskSargaPrefetch, TaskKandaScan}
}

// ProcessTask 处理任务
func (h *PrefetchHandler) ProcessTask(ctx context.Context, task *Task) error {
	switch task.Type {
	case TaskSargaPrefetch:
		return h.processSargaPrefetch(ctx, task)
	case TaskKandaScan:
		return h.processKandaScan(ctx, task)
	default:
		return fmt.Errorf("%w: unsupported task type %s", ErrInvalidPayload, task.Type)
	}
}

// processSargaPrefetch 预取并持久化一章，然后刷新本章统计
func (h *PrefetchHandler) processSargaPrefetch(ctx context.Context, task *Task) error {
	var payload SargaPrefetchPayload
	if err := UnmarshalPayload(task.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if payload.Kanda <= 0 || payload.Sarga <= 0 {
		return fmt.Errorf("%w: kanda and sarga must be positive", ErrInvalidPayload)
	}

	script := sloka.Script(payload.Script)
	if !script.Valid() {
		script = sloka.ScriptTelugu
	}

	result, err := h.prefetchSarga(ctx, payload.Kanda, payload.Sarga, script)
	if err != nil {
		return err
	}

	h.logger.WithFields(logrus.Fields{
		"kanda":       payload.Kanda,
		"sarga":       payload.Sarga,
		"sloka_count": result.SlokaCount,
	}).Info("Sarga prefetched")
	return nil
}

// prefetchSarga 加载一章并写统计，预取成功的前提是首个完整编号以 kanda.sarga. 开头
func (h *PrefetchHandler) prefetchSarga(ctx context.Context, kanda, sarga int, script sloka.Script) (*SargaPrefetchResult, error) {
	loaded, err := h.loader.LoadSarga(ctx, kanda, sarga, script)
	if err != nil {
		return nil, err
	}

	// 首节编号校验，防止上游把越界章号回退到别的章
	if err := h.verifyFirstSloka(loaded, kanda, sarga); err != nil {
		return nil, err
	}

	if err := h.stats.RecordSargaCount(kanda, sarga, loaded.Len()); err != nil {
		return nil, fmt.Errorf("failed to record sarga stats: %w", err)
	}

	return &SargaPrefetchResult{
		Kanda:      kanda,
		Sarga:      sarga,
		SlokaCount: loaded.Len(),
	}, nil
}

// processKandaScan 逐章探测一卷，结束后刷新卷级汇总
// 单章失败不中断扫描；章不存在视为到达卷尾
func (h *PrefetchHandler) processKandaScan(ctx context.Context, task *Task) error {
	var payload KandaScanPayload
	if err := UnmarshalPayload(task.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if payload.Kanda <= 0 {
		return fmt.Errorf("%w: kanda must be positive", ErrInvalidPayload)
	}
	maxSarga := payload.MaxSarga
	if maxSarga <= 0 {
		maxSarga = 300
	}

	script := sloka.Script(payload.Script)
	if !script.Valid() {
		script = sloka.ScriptTelugu
	}

	failures := 0
	for s := 1; s <= maxSarga; s++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, err := h.prefetchSarga(ctx, payload.Kanda, s, script)
		if err == nil {
			continue
		}
		// 章不存在说明已经扫过卷尾
		if errors.Is(err, models.ErrSargaNotFound) {
			break
		}
		failures++
		h.logger.WithError(err).WithFields(logrus.Fields{
			"kanda": payload.Kanda,
			"sarga": s,
		}).Warn("Failed to prefetch sarga during kanda scan")
	}

	if err := h.stats.RecomputeKanda(payload.Kanda); err != nil {
		return fmt.Errorf("failed to recompute kanda stats: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"kanda":    payload.Kanda,
		"failures": failures,
	}).Info("Kanda scan completed")
	return nil
}

// verifyFirstSloka 校验首个完整编号是否带有预期的 kanda.sarga. 前缀
// 整章都没有编号时保留记录，但告警留痕以便人工核对口径
func (h *PrefetchHandler) verifyFirstSloka(s *sloka.Sarga, kanda, sarga int) error {
	prefix := fmt.Sprintf("%d.%d.", kanda, sarga)
	for _, record := range s.Slokas() {
		if record.Number == "" {
			continue
		}
		if !strings.HasPrefix(record.Number, prefix) {
			return fmt.Errorf("unexpected sloka prefix for kanda %d sarga %d: %s",
				kanda, sarga, record.Number)
		}
		return nil
	}

	h.logger.WithFields(logrus.Fields{
		"kanda": kanda,
		"sarga": sarga,
		"count": s.Len(),
	}).Warn("Sarga has no numbered slokas, accepting without prefix check")
	return nil
}
