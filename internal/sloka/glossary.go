package sloka

import (
	"strings"
)

// GlossEntry 一条逐词释义
type GlossEntry struct {
	Word    string `json:"word"`    // 原文词或词组
	Meaning string `json:"meaning"` // 对应的释义短语
}

// Glossary 有序的逐词释义表
// 顺序即来源顺序；原文中同一个词可能出现多次，查找时以最后一次为准
type Glossary []GlossEntry

// Lookup 按原文词查找释义
// 同词多次出现时返回最后一次的释义
func (g Glossary) Lookup(word string) (string, bool) {
	for i := len(g) - 1; i >= 0; i-- {
		if g[i].Word == word {
			return g[i].Meaning, true
		}
	}
	return "", false
}

// ExtractGlossary 从逐词对照字段提取释义表
// 字段里原文词组和释义短语交替出现、逗号收尾，两种语言之间没有机器可读的
// 分隔符，只能靠文字系统区分。算法从左到右扫描：连续的原文词元累积为待定
// 的键；遇到第一个释义词元后开始累积值，直到逗号（或字段结尾）提交这一对。
// 这样保证键只含原文词元、值只含释义词元，键和值都可以跨多个词。
// 无键或无值的残缺对直接丢弃，宁可丢弃也不污染映射
func ExtractGlossary(text string) Glossary {
	var glossary Glossary
	var key, val []string

	commit := func() {
		if len(key) > 0 && len(val) > 0 {
			glossary = append(glossary, GlossEntry{
				Word:    strings.Join(key, " "),
				Meaning: strings.Join(val, " "),
			})
		}
		key = nil
		val = nil
	}

	for _, token := range strings.Fields(text) {
		terminated := strings.HasSuffix(token, ",")
		trimmed := strings.Trim(token, ",")
		if trimmed == "" {
			continue
		}

		switch ClassifyToken(trimmed) {
		case ScriptSource:
			// 值累积中出现新的原文词元，说明上一对没等到逗号就结束了
			if len(val) > 0 {
				commit()
			}
			key = append(key, trimmed)
		case ScriptMeaning:
			// 没有待定的键说明这一段释义是残缺对，跳过不提交
			if len(key) == 0 {
				continue
			}
			val = append(val, trimmed)
			if terminated {
				commit()
			}
		default:
			// 中性词元（数字、标点）只在值的中间保留
			if len(val) > 0 {
				val = append(val, trimmed)
				if terminated {
					commit()
				}
			}
		}
	}
	commit()

	return glossary
}
