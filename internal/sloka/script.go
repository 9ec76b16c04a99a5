package sloka

import (
	"unicode"
)

// TokenScript 词元的文字分类
// 逐词对照字段里没有任何结构化分隔符，只能靠文字系统区分原文和释义
type TokenScript int

const (
	// ScriptNeutral 中性词元：不含任何字母（纯标点、数字等）
	ScriptNeutral TokenScript = iota
	// ScriptSource 原文词元：含有至少一个非拉丁字母
	ScriptSource
	// ScriptMeaning 释义词元：含有字母且全部字母都是拉丁字母
	ScriptMeaning
)

// ClassifyToken 按文字系统对单个词元分类
// 规则：词元是释义语言当且仅当它至少含一个字母且所有字母都属于拉丁字母表；
// 含有任何非拉丁字母的词元视为原文；不含字母的词元视为中性
func ClassifyToken(token string) TokenScript {
	hasLetter := false
	for _, r := range token {
		if !unicode.IsLetter(r) {
			continue
		}
		hasLetter = true
		if !unicode.Is(unicode.Latin, r) {
			return ScriptSource
		}
	}
	if hasLetter {
		return ScriptMeaning
	}
	return ScriptNeutral
}
