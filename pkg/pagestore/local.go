package pagestore

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fyerfyer/valmiki-reader/internal/sloka"
)

// LocalStore 本地文件系统的页面快照存储
type LocalStore struct {
	basePath string // 快照根目录
}

// LocalConfig 本地快照存储配置
type LocalConfig struct {
	Path string // 快照根目录
}

// NewLocalStore 创建本地快照存储实例
func NewLocalStore(cfg LocalConfig) (*LocalStore, error) {
	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %v", err)
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create page store directory: %v", err)
	}

	return &LocalStore{basePath: absPath}, nil
}

// Save 保存一章页面的快照，已存在则覆盖
func (s *LocalStore) Save(key PageKey, html string) error {
	path := filepath.Join(s.basePath, filepath.FromSlash(key.ObjectName()))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %v", err)
	}
	return nil
}

// Get 获取一章页面的快照
func (s *LocalStore) Get(key PageKey) (string, bool, error) {
	path := filepath.Join(s.basePath, filepath.FromSlash(key.ObjectName()))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read snapshot: %v", err)
	}
	return string(data), true, nil
}

// Delete 删除一章页面的快照
func (s *LocalStore) Delete(key PageKey) error {
	path := filepath.Join(s.basePath, filepath.FromSlash(key.ObjectName()))
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete snapshot: %v", err)
	}
	return nil
}

// List 列出已有快照的键
func (s *LocalStore) List() ([]PageKey, error) {
	var keys []PageKey

	err := filepath.Walk(s.basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}
		if key, ok := parseObjectName(filepath.ToSlash(rel)); ok {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %v", err)
	}

	return keys, nil
}

// parseObjectName 从对象名还原快照键
// 不符合 <script>/<kanda>/<sarga>.html 布局的文件直接忽略
func parseObjectName(name string) (PageKey, bool) {
	parts := strings.Split(name, "/")
	if len(parts) != 3 || !strings.HasSuffix(parts[2], ".html") {
		return PageKey{}, false
	}
	script := sloka.Script(parts[0])
	if !script.Valid() {
		return PageKey{}, false
	}
	kanda, err := strconv.Atoi(parts[1])
	if err != nil {
		return PageKey{}, false
	}
	sarga, err := strconv.Atoi(strings.TrimSuffix(parts[2], ".html"))
	if err != nil {
		return PageKey{}, false
	}
	return PageKey{Kanda: kanda, Sarga: sarga, Script: script}, true
}
