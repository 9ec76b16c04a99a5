package sloka

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/fyerfyer/valmiki-reader/internal/models"
)

// Script 页面的文字版本
// 只影响原文字形，不影响提取算法
type Script string

const (
	// ScriptTelugu 泰卢固文版本
	ScriptTelugu Script = "te"
	// ScriptDevanagari 天城文版本
	ScriptDevanagari Script = "dv"
)

// Valid 检查文字版本是否受支持
func (s Script) Valid() bool {
	return s == ScriptTelugu || s == ScriptDevanagari
}

// 页面布局的固定选择器：每节一个 .views-row，行内三个子字段
const (
	rowSelector         = ".views-row"
	bodySelector        = ".views-field-body .field-content"
	glossSelector       = ".views-field-field-htetrans .field-content"
	explanationSelector = ".views-field-field-explanation .field-content"
)

// Sarga 一章的诗节集合
// 构造完成后不可变，可被多个调用方并发只读访问
type Sarga struct {
	Kanda  int    // 卷号
	Sarga  int    // 章号
	Script Script // 抓取时使用的文字版本

	slokas []Sloka
}

// ParseSarga 解析一章的页面 HTML
// 按文档顺序对每个内容块依次组装，单个块的缺陷只影响该块自身；
// 页面上一个块都没有不算解析错误，返回长度为 0 的 Sarga，由调用方决断
func ParseSarga(r io.Reader, kanda, sarga int, script Script) (*Sarga, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sarga page: %w", err)
	}

	result := &Sarga{
		Kanda:  kanda,
		Sarga:  sarga,
		Script: script,
	}

	doc.Find(rowSelector).Each(func(i int, row *goquery.Selection) {
		block := Block{
			Body:        selectionText(row.Find(bodySelector), "\n"),
			Gloss:       selectionText(row.Find(glossSelector), " "),
			Explanation: selectionText(row.Find(explanationSelector), " "),
		}
		result.slokas = append(result.slokas, Assemble(block, i))
	})

	return result, nil
}

// ParseSargaHTML 从字符串解析一章页面
func ParseSargaHTML(page string, kanda, sarga int, script Script) (*Sarga, error) {
	return ParseSarga(strings.NewReader(page), kanda, sarga, script)
}

// NewSarga 从已有的诗节记录构造集合（来自持久层或缓存时使用）
func NewSarga(kanda, sarga int, script Script, slokas []Sloka) *Sarga {
	return &Sarga{
		Kanda:  kanda,
		Sarga:  sarga,
		Script: script,
		slokas: slokas,
	}
}

// Get 按 0 起始位置取一个诗节
// 越界直接返回错误，绝不静默收敛到边界
func (s *Sarga) Get(index int) (Sloka, error) {
	if index < 0 || index >= len(s.slokas) {
		return Sloka{}, fmt.Errorf("%w: index %d out of range (0-%d)",
			models.ErrIndexOutOfRange, index, len(s.slokas)-1)
	}
	return s.slokas[index], nil
}

// Len 返回本章的诗节数
func (s *Sarga) Len() int {
	return len(s.slokas)
}

// Slokas 返回全部诗节的副本切片
func (s *Sarga) Slokas() []Sloka {
	out := make([]Sloka, len(s.slokas))
	copy(out, s.slokas)
	return out
}

// selectionText 收集选区内的所有文本节点
// 每个文本节点裁剪空白、丢弃空节点后用 sep 连接，
// 对齐原站页面里块级与行内混排的取文本语义
func selectionText(s *goquery.Selection, sep string) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, node := range s.Nodes {
		walk(node)
	}
	return strings.Join(parts, sep)
}
