package taskqueue

import (
	"encoding/json"
	"fmt"
	"time"
)

// TaskType 任务类型
type TaskType string

const (
	// TaskSargaPrefetch 单章预取任务：抓取并解析一章，持久化诗节与统计
	TaskSargaPrefetch TaskType = "sarga_prefetch"
	// TaskKandaScan 整卷扫描任务：逐章探测一卷并刷新卷级统计
	TaskKandaScan TaskType = "kanda_scan"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	// StatusPending 等待处理
	StatusPending TaskStatus = "pending"
	// StatusProcessing 处理中
	StatusProcessing TaskStatus = "processing"
	// StatusCompleted 已完成
	StatusCompleted TaskStatus = "completed"
	// StatusFailed 处理失败
	StatusFailed TaskStatus = "failed"
)

// Task 任务基础结构
type Task struct {
	ID          string          `json:"id"`           // 任务唯一标识符
	Type        TaskType        `json:"type"`         // 任务类型
	SubjectID   string          `json:"subject_id"`   // 任务对象标识，如 "1.5" 或 "3"
	Status      TaskStatus      `json:"status"`       // 任务状态
	Payload     json.RawMessage `json:"payload"`      // 任务载荷数据，不同任务类型对应不同结构
	Result      json.RawMessage `json:"result"`       // 任务结果数据
	Error       string          `json:"error"`        // 错误信息（如果处理失败）
	CreatedAt   time.Time       `json:"created_at"`   // 创建时间
	UpdatedAt   time.Time       `json:"updated_at"`   // 更新时间
	StartedAt   *time.Time      `json:"started_at"`   // 开始处理时间
	CompletedAt *time.Time      `json:"completed_at"` // 完成时间
	Attempts    int             `json:"attempts"`     // 尝试次数
	MaxRetries  int             `json:"max_retries"`  // 最大重试次数
}

// SargaPrefetchPayload 单章预取任务载荷
type SargaPrefetchPayload struct {
	Kanda  int    `json:"kanda"`  // 卷号
	Sarga  int    `json:"sarga"`  // 章号
	Script string `json:"script"` // 文字版本
}

// SubjectID 返回载荷对应的任务对象标识
func (p SargaPrefetchPayload) SubjectID() string {
	return fmt.Sprintf("%d.%d", p.Kanda, p.Sarga)
}

// SargaPrefetchResult 单章预取任务结果
type SargaPrefetchResult struct {
	Kanda      int    `json:"kanda"`       // 卷号
	Sarga      int    `json:"sarga"`       // 章号
	SlokaCount int    `json:"sloka_count"` // 解析出的诗节数
	Error      string `json:"error"`       // 错误信息（如果有）
}

// KandaScanPayload 整卷扫描任务载荷
type KandaScanPayload struct {
	Kanda    int    `json:"kanda"`     // 卷号
	MaxSarga int    `json:"max_sarga"` // 探测的章号上限
	Script   string `json:"script"`    // 文字版本
}

// SubjectID 返回载荷对应的任务对象标识
func (p KandaScanPayload) SubjectID() string {
	return fmt.Sprintf("%d", p.Kanda)
}

// KandaScanResult 整卷扫描任务结果
type KandaScanResult struct {
	Kanda       int `json:"kanda"`        // 卷号
	TotalSargas int `json:"total_sargas"` // 探测到的章数
	TotalSlokas int `json:"total_slokas"` // 诗节总数
	Failures    int `json:"failures"`     // 探测失败的章数
}
