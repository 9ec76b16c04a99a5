package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SlokaRow 持久化的诗节记录
// 每行对应一章里的一个诗节，按 (kanda, sarga, script, position) 唯一
type SlokaRow struct {
	ID         uint           `gorm:"primaryKey;autoIncrement"`                // 主键ID
	Kanda      uint           `gorm:"not null;uniqueIndex:idx_sloka_pos"`      // 卷号
	Sarga      uint           `gorm:"not null;uniqueIndex:idx_sloka_pos"`      // 章号
	Script     string         `gorm:"size:8;not null;uniqueIndex:idx_sloka_pos"` // 文字版本
	Position   uint           `gorm:"not null;uniqueIndex:idx_sloka_pos"`      // 页内位置（0起始）
	NumberText string         `gorm:"size:32"`                                 // 来源声明的点分编号，可能为空
	Text       string         `gorm:"type:text;not null"`                      // 诗节正文
	Glossary   datatypes.JSON `gorm:"type:json"`                               // 逐词释义表，JSON数组
	Meaning    string         `gorm:"type:text"`                               // 整节释义
	CreatedAt  time.Time      `gorm:"not null"`                                // 创建时间
	UpdatedAt  time.Time      `gorm:"not null"`                                // 更新时间
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (s *SlokaRow) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	return nil
}

// BeforeUpdate GORM的钩子函数，更新记录前自动设置更新时间
func (s *SlokaRow) BeforeUpdate(tx *gorm.DB) (err error) {
	s.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (SlokaRow) TableName() string {
	return "sloka_rows"
}

// Bookmark 书签记录
// 以 (kanda, sarga, sloka) 为键，sloka 是 1 起始的节号
type Bookmark struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`              // 主键ID
	Kanda     uint      `gorm:"not null;uniqueIndex:idx_bookmark_ref"` // 卷号
	Sarga     uint      `gorm:"not null;uniqueIndex:idx_bookmark_ref"` // 章号
	Sloka     uint      `gorm:"not null;uniqueIndex:idx_bookmark_ref"` // 节号（1起始）
	CreatedAt time.Time `gorm:"not null"`                              // 创建时间
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (b *Bookmark) BeforeCreate(tx *gorm.DB) (err error) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	return nil
}

// TableName 明确指定表名
func (Bookmark) TableName() string {
	return "bookmarks"
}

// ReadingPosition 每种阅读语言的最后阅读位置
type ReadingPosition struct {
	Language  string    `gorm:"primaryKey;size:8"` // 阅读语言（en/te/tg）
	Kanda     uint      `gorm:"not null"`          // 卷号
	Sarga     uint      `gorm:"not null"`          // 章号
	Sloka     uint      `gorm:"not null"`          // 节号（1起始）
	UpdatedAt time.Time `gorm:"not null"`          // 更新时间
}

// BeforeSave GORM的钩子函数，保存前自动设置更新时间
func (p *ReadingPosition) BeforeSave(tx *gorm.DB) (err error) {
	p.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (ReadingPosition) TableName() string {
	return "reading_positions"
}

// SargaStats 每章的诗节数统计
type SargaStats struct {
	Kanda      uint      `gorm:"primaryKey;autoIncrement:false"` // 卷号
	Sarga      uint      `gorm:"primaryKey;autoIncrement:false"` // 章号
	SlokaCount uint      `gorm:"not null"`                       // 本章诗节数
	UpdatedAt  time.Time `gorm:"not null"`                       // 更新时间
}

// BeforeSave GORM的钩子函数，保存前自动设置更新时间
func (s *SargaStats) BeforeSave(tx *gorm.DB) (err error) {
	s.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (SargaStats) TableName() string {
	return "sarga_stats"
}

// KandaStats 每卷的总章数和总诗节数统计
type KandaStats struct {
	Kanda       uint      `gorm:"primaryKey;autoIncrement:false"` // 卷号
	TotalSargas uint      `gorm:"not null"`                       // 总章数
	TotalSlokas uint      `gorm:"not null"`                       // 总诗节数
	UpdatedAt   time.Time `gorm:"not null"`                       // 更新时间
}

// BeforeSave GORM的钩子函数，保存前自动设置更新时间
func (k *KandaStats) BeforeSave(tx *gorm.DB) (err error) {
	k.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (KandaStats) TableName() string {
	return "kanda_stats"
}
