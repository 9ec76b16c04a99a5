package sloka

import (
	"regexp"
	"strings"
)

// 诗节编号标记形如 ৷৷1.1.18৷৷，两侧是成对的节末标点（区别于句中标点 ।）
var (
	markerRe = regexp.MustCompile(`৷৷([\d.]+)৷৷`)
	stripRe  = regexp.MustCompile(`\s*৷৷[\d.]+৷৷\s*`)
)

// SegmentVerse 切分一个诗节正文块
// 输入为已去除空行并裁剪过空白的文本行，返回编号字符串和正文
// 找不到编号标记时 number 为空字符串，正文仍照常提取
func SegmentVerse(lines []string) (number string, text string) {
	for _, line := range lines {
		if m := markerRe.FindStringSubmatch(line); m != nil {
			number = m[1]
			break
		}
	}

	var kept []string
	for _, line := range lines {
		// 方括号开头的行是注释/摘要行，无条件排除
		if strings.HasPrefix(line, "[") {
			continue
		}
		// 去掉编号标记后必须还有实际内容，防止只剩标点的孤行混入正文
		if !hasContent(markerRe.ReplaceAllString(line, "")) {
			continue
		}
		// 只剥离标记子串，标记所在行本身以及它前面的同组行都要保留
		kept = append(kept, stripRe.ReplaceAllString(line, ""))
	}

	return number, strings.TrimSpace(strings.Join(kept, "\n"))
}

// hasContent 判断去除标记后的行是否还有正文字符
func hasContent(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '.', ',', '।', '৷':
		default:
			return true
		}
	}
	return false
}

// SplitLines 将原始块文本按行拆分并丢弃空行
// 每行两端空白都会被裁剪，供 SegmentVerse 使用
func SplitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
