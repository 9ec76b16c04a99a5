package models

import "errors"

var (
	// ErrSargaNotFound 章不存在错误（页面存在但解析不出任何诗节，或上游返回404）
	ErrSargaNotFound = errors.New("sarga not found")

	// ErrSlokaNotFound 诗节不存在错误
	ErrSlokaNotFound = errors.New("sloka not found")

	// ErrIndexOutOfRange 诗节索引越界错误
	ErrIndexOutOfRange = errors.New("sloka index out of range")

	// ErrUpstreamFetch 上游抓取失败错误（网络或站点异常，与"章不存在"区分）
	ErrUpstreamFetch = errors.New("upstream fetch failed")

	// ErrInvalidScript 不支持的文字版本错误
	ErrInvalidScript = errors.New("invalid script code")

	// ErrInvalidLanguage 不支持的阅读语言错误
	ErrInvalidLanguage = errors.New("invalid display language")
)
