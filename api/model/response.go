package model

import (
	"time"

	"github.com/fyerfyer/valmiki-reader/internal/sloka"
	"github.com/fyerfyer/valmiki-reader/pkg/taskqueue"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`               // 响应状态码，0表示成功
	Message string      `json:"message"`            // 响应消息
	Data    interface{} `json:"data,omitempty"`     // 响应数据，可能为空
	TraceID string      `json:"trace_id,omitempty"` // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// GlossEntryInfo 词汇表条目
type GlossEntryInfo struct {
	Word    string `json:"word"`    // 源语词
	Meaning string `json:"meaning"` // 释义
}

// SlokaInfo 单节诗文信息
type SlokaInfo struct {
	Number   string           `json:"number"`             // 节编号（如 1.1.5）
	Position int              `json:"position"`           // 章内位置（1起始）
	Text     string           `json:"text"`               // 诗文正文
	Glossary []GlossEntryInfo `json:"glossary,omitempty"` // 逐词释义
	Meaning  string           `json:"meaning"`            // 整节释义
}

// ConvertSlokaInfo 将解析记录转换为响应信息
// 内部的页内位置是0起始的，对外统一转成1起始的节号
func ConvertSlokaInfo(s *sloka.Sloka) SlokaInfo {
	info := SlokaInfo{
		Number:   s.Number,
		Position: s.Position + 1,
		Text:     s.Text,
		Meaning:  s.Meaning,
	}
	if len(s.Glossary) > 0 {
		entries := make([]GlossEntryInfo, len(s.Glossary))
		for i, e := range s.Glossary {
			entries[i] = GlossEntryInfo{Word: e.Word, Meaning: e.Meaning}
		}
		info.Glossary = entries
	}
	return info
}

// SargaResponse 章读取响应
type SargaResponse struct {
	Kanda    int         `json:"kanda"`     // 卷号
	Sarga    int         `json:"sarga"`     // 章号
	Script   string      `json:"script"`    // 文字版本
	Total    int         `json:"total"`     // 本章节总数
	Page     int         `json:"page"`      // 当前页码
	PageSize int         `json:"page_size"` // 每页大小
	Slokas   []SlokaInfo `json:"slokas"`    // 本页节列表
}

// SlokaNavInfo 相邻节导航信息
type SlokaNavInfo struct {
	Kanda int `json:"kanda"` // 卷号
	Sarga int `json:"sarga"` // 章号
	Sloka int `json:"sloka"` // 节号
}

// SlokaResponse 单节读取响应
type SlokaResponse struct {
	Kanda      int           `json:"kanda"`          // 卷号
	Sarga      int           `json:"sarga"`          // 章号
	Position   int           `json:"position"`       // 节号（1起始）
	Total      int           `json:"total"`          // 本章节总数
	Script     string        `json:"script"`         // 文字版本
	Lang       string        `json:"lang"`           // 阅读语言
	Sloka      SlokaInfo     `json:"sloka"`          // 节内容
	Bookmarked bool          `json:"bookmarked"`     // 是否已收藏
	Prev       *SlokaNavInfo `json:"prev,omitempty"` // 上一节
	Next       *SlokaNavInfo `json:"next,omitempty"` // 下一节
}

// BookmarkInfo 书签信息
type BookmarkInfo struct {
	Kanda     int       `json:"kanda"`      // 卷号
	Sarga     int       `json:"sarga"`      // 章号
	Sloka     int       `json:"sloka"`      // 节号
	CreatedAt time.Time `json:"created_at"` // 收藏时间
}

// BookmarkToggleResponse 书签切换响应
type BookmarkToggleResponse struct {
	Kanda      int  `json:"kanda"`      // 卷号
	Sarga      int  `json:"sarga"`      // 章号
	Sloka      int  `json:"sloka"`      // 节号
	Bookmarked bool `json:"bookmarked"` // 切换后状态
}

// BookmarkListResponse 书签列表响应
type BookmarkListResponse struct {
	Total     int            `json:"total"`     // 总数量
	Bookmarks []BookmarkInfo `json:"bookmarks"` // 书签列表
}

// ReadingPositionInfo 阅读进度信息
type ReadingPositionInfo struct {
	Lang      string    `json:"lang"`       // 阅读语言
	Kanda     int       `json:"kanda"`      // 卷号
	Sarga     int       `json:"sarga"`      // 章号
	Sloka     int       `json:"sloka"`      // 节号
	UpdatedAt time.Time `json:"updated_at"` // 更新时间
}

// ProgressResponse 阅读进度响应
type ProgressResponse struct {
	Positions []ReadingPositionInfo `json:"positions"` // 各语言的最后阅读位置
}

// SargaStatsInfo 单章统计信息
type SargaStatsInfo struct {
	Sarga      int `json:"sarga"`       // 章号
	SlokaCount int `json:"sloka_count"` // 节数
}

// KandaStatsResponse 卷统计响应
type KandaStatsResponse struct {
	Kanda       int              `json:"kanda"`        // 卷号
	TotalSargas int              `json:"total_sargas"` // 章总数
	TotalSlokas int              `json:"total_slokas"` // 节总数
	Sargas      []SargaStatsInfo `json:"sargas"`       // 各章统计
}

// TaskEnqueueResponse 任务入队响应
type TaskEnqueueResponse struct {
	TaskID string `json:"task_id"` // 任务ID
	Type   string `json:"type"`    // 任务类型
	Status string `json:"status"`  // 任务状态
}

// SubjectTasksResponse 任务对象的任务列表响应
type SubjectTasksResponse struct {
	Subject string                `json:"subject"` // 任务对象标识
	Total   int                   `json:"total"`   // 任务总数
	Tasks   []*taskqueue.TaskInfo `json:"tasks"`   // 任务列表
}

// TaskStatusResponse 任务状态响应
type TaskStatusResponse struct {
	TaskID    string      `json:"task_id"`              // 任务ID
	Type      string      `json:"type"`                 // 任务类型
	Status    string      `json:"status"`               // 任务状态
	Error     string      `json:"error,omitempty"`      // 错误信息（如果有）
	Result    interface{} `json:"result,omitempty"`     // 任务结果
	CreatedAt time.Time   `json:"created_at"`           // 创建时间
	UpdatedAt time.Time   `json:"updated_at,omitempty"` // 更新时间
}
