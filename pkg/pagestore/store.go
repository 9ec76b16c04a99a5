package pagestore

import (
	"fmt"

	"github.com/fyerfyer/valmiki-reader/internal/sloka"
)

// PageKey 页面快照的键：卷、章、文字版本
type PageKey struct {
	Kanda  int          // 卷号
	Sarga  int          // 章号
	Script sloka.Script // 文字版本
}

// ObjectName 返回快照在存储里的对象名
// 形如 te/1/5.html，同一键的快照整体覆盖
func (k PageKey) ObjectName() string {
	return fmt.Sprintf("%s/%d/%d.html", k.Script, k.Kanda, k.Sarga)
}

// String 返回键的可读形式，用于日志
func (k PageKey) String() string {
	return fmt.Sprintf("%d.%d(%s)", k.Kanda, k.Sarga, k.Script)
}

// Store 页面快照存储接口
// 保存原站抓回的原始HTML，解析失败或规则调整时可以离线重放，不必重新抓取
type Store interface {
	// Save 保存一章页面的快照，已存在则覆盖
	Save(key PageKey, html string) error

	// Get 获取一章页面的快照
	Get(key PageKey) (html string, found bool, err error)

	// Delete 删除一章页面的快照
	Delete(key PageKey) error

	// List 列出已有快照的键
	List() ([]PageKey, error)
}
