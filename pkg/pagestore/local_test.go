package pagestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fyerfyer/valmiki-reader/internal/sloka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLocalStore(t *testing.T) *LocalStore {
	store, err := NewLocalStore(LocalConfig{Path: t.TempDir()})
	require.NoError(t, err)
	return store
}

func TestPageKeyObjectName(t *testing.T) {
	key := PageKey{Kanda: 1, Sarga: 5, Script: sloka.ScriptTelugu}
	assert.Equal(t, "te/1/5.html", key.ObjectName())
	assert.Equal(t, "1.5(te)", key.String())
}

func TestLocalStoreSaveAndGet(t *testing.T) {
	store := setupLocalStore(t)
	key := PageKey{Kanda: 1, Sarga: 5, Script: sloka.ScriptTelugu}

	// 不存在的快照返回 found=false 而不是错误
	_, found, err := store.Get(key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Save(key, "<html>v1</html>"))

	html, found, err := store.Get(key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "<html>v1</html>", html)

	// 同键覆盖保存
	require.NoError(t, store.Save(key, "<html>v2</html>"))

	html, found, err = store.Get(key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "<html>v2</html>", html)
}

func TestLocalStoreDelete(t *testing.T) {
	store := setupLocalStore(t)
	key := PageKey{Kanda: 2, Sarga: 10, Script: sloka.ScriptDevanagari}

	require.NoError(t, store.Save(key, "<html></html>"))
	require.NoError(t, store.Delete(key))

	_, found, err := store.Get(key)
	require.NoError(t, err)
	assert.False(t, found)

	// 删除不存在的快照不报错
	assert.NoError(t, store.Delete(key))
}

func TestLocalStoreList(t *testing.T) {
	store := setupLocalStore(t)

	keys := []PageKey{
		{Kanda: 1, Sarga: 1, Script: sloka.ScriptTelugu},
		{Kanda: 1, Sarga: 2, Script: sloka.ScriptTelugu},
		{Kanda: 3, Sarga: 7, Script: sloka.ScriptDevanagari},
	}
	for _, key := range keys {
		require.NoError(t, store.Save(key, "<html></html>"))
	}

	// 布局之外的杂散文件被忽略
	stray := filepath.Join(store.basePath, "notes.txt")
	require.NoError(t, os.WriteFile(stray, []byte("ignore me"), 0644))

	listed, err := store.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, keys, listed)
}
