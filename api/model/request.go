package model

// PaginationRequest 分页请求参数
type PaginationRequest struct {
	Page     int `form:"page" json:"page" binding:"omitempty,min=1"`           // 当前页码，从1开始
	PageSize int `form:"page_size" json:"page_size" binding:"omitempty,min=1"` // 每页记录数
}

// GetPage 获取页码，默认为1
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页记录数，默认为20，最大为100
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}

// SargaURI 章定位参数
type SargaURI struct {
	Kanda int `uri:"kanda" binding:"required,min=1,max=6"` // 卷号（1-6）
	Sarga int `uri:"sarga" binding:"required,min=1"`       // 章号
}

// SlokaURI 节定位参数，节号1起始
type SlokaURI struct {
	Kanda int `uri:"kanda" binding:"required,min=1,max=6"` // 卷号（1-6）
	Sarga int `uri:"sarga" binding:"required,min=1"`       // 章号
	Sloka int `uri:"sloka" binding:"required,min=1"`       // 节号（1起始）
}

// KandaURI 卷定位参数
type KandaURI struct {
	Kanda int `uri:"kanda" binding:"required,min=1,max=6"` // 卷号（1-6）
}

// SargaQuery 章读取的查询参数
type SargaQuery struct {
	PaginationRequest
	Script string `form:"script" binding:"omitempty,script"` // 文字版本（te/dv），默认te
}

// SlokaQuery 单节读取的查询参数
type SlokaQuery struct {
	Script string `form:"script" binding:"omitempty,script"`  // 文字版本（te/dv），默认te
	Lang   string `form:"lang" binding:"omitempty,displaylang"` // 阅读语言（en/te/tg），默认en
}

// MarkReadRequest 标记已读请求
type MarkReadRequest struct {
	Lang string `json:"lang" binding:"required,displaylang"` // 阅读语言（en/te/tg）
}

// PrefetchRequest 预取任务入队请求
// type 为 sarga_prefetch 时需要 sarga；kanda_scan 时 sarga 留空
type PrefetchRequest struct {
	Type     string `json:"type" binding:"required,oneof=sarga_prefetch kanda_scan"` // 任务类型
	Kanda    int    `json:"kanda" binding:"required,min=1,max=6"`                    // 卷号
	Sarga    int    `json:"sarga" binding:"omitempty,min=1"`                         // 章号
	MaxSarga int    `json:"max_sarga" binding:"omitempty,min=1"`                     // 扫描章号上限
	Script   string `json:"script" binding:"omitempty,script"`                       // 文字版本
}

// TaskStatusRequest 任务状态查询请求
type TaskStatusRequest struct {
	ID string `uri:"id" binding:"required"` // 任务ID
}
