package sloka

import (
	"fmt"
	"strconv"
	"strings"
)

// Ref 诗节的三级坐标：卷（Kanda）、章（Sarga）、节（Sloka）
type Ref struct {
	Kanda int `json:"kanda"`
	Sarga int `json:"sarga"`
	Sloka int `json:"sloka"`
}

// String 返回点分形式的坐标，如 "1.1.18"
func (r Ref) String() string {
	return fmt.Sprintf("%d.%d.%d", r.Kanda, r.Sarga, r.Sloka)
}

// ParseRef 解析点分编号字符串
// 三段都必须是正整数，否则返回 false
func ParseRef(number string) (Ref, bool) {
	parts := strings.Split(number, ".")
	if len(parts) != 3 {
		return Ref{}, false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			return Ref{}, false
		}
		nums[i] = n
	}
	return Ref{Kanda: nums[0], Sarga: nums[1], Sloka: nums[2]}, true
}

// Sloka 一个诗节的规范化记录
// 构造后不可变；来源编号和页内位置同时保留，编号缺失时调用方按位置索引
type Sloka struct {
	Number   string   `json:"number"`         // 来源声明的点分编号，缺失时为空
	Ref      Ref      `json:"ref,omitempty"`  // 解析后的坐标，HasRef 为 true 时有效
	HasRef   bool     `json:"has_ref"`        // 编号是否完整可解析
	Position int      `json:"position"`       // 页内 0 起始位置
	Text     string   `json:"text"`           // 诗节正文，多行以换行连接
	Glossary Glossary `json:"glossary"`       // 逐词释义表
	Meaning  string   `json:"meaning"`        // 整节释义（可能为空）
}

// Block 一个诗节内容块的三个子字段
// 任何子字段缺失时保持空字符串，组装照常进行
type Block struct {
	Body        string // 正文字段：编号标记 + 诗句 + 可能的注释行
	Gloss       string // 逐词对照字段
	Explanation string // 整节释义字段
}

// Assemble 将一个内容块组装为诗节记录
// position 是该块在页面里的 0 起始位置；编号缺失不是错误，记录照常产出
func Assemble(block Block, position int) Sloka {
	number, text := SegmentVerse(SplitLines(block.Body))

	s := Sloka{
		Number:   number,
		Position: position,
		Text:     text,
		Glossary: ExtractGlossary(block.Gloss),
		Meaning:  normalizeText(block.Explanation),
	}
	if ref, ok := ParseRef(number); ok {
		s.Ref = ref
		s.HasRef = true
	}
	return s
}

// normalizeText 折叠空白为单行文本
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
