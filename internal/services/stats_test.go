package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/valmiki-reader/internal/repository"
)

func TestStatsRecordAndRecompute(t *testing.T) {
	cleanup := setupServiceDB(t)
	defer cleanup()

	service := NewStatsService(repository.NewStatsRepository(), nil)

	require.NoError(t, service.RecordSargaCount(1, 1, 100))
	require.NoError(t, service.RecordSargaCount(1, 2, 49))
	require.NoError(t, service.RecordSargaCount(1, 5, 31))
	// 其他卷的统计不参与本卷汇总
	require.NoError(t, service.RecordSargaCount(2, 1, 60))

	require.NoError(t, service.RecomputeKanda(1))

	overview, err := service.Overview(1)
	require.NoError(t, err)
	require.NotNil(t, overview.Kanda)

	// 总章数取最大章号，总诗节数是各章之和
	assert.Equal(t, uint(5), overview.Kanda.TotalSargas)
	assert.Equal(t, uint(180), overview.Kanda.TotalSlokas)
	require.Len(t, overview.Sargas, 3)
	assert.Equal(t, uint(1), overview.Sargas[0].Sarga)
	assert.Equal(t, uint(5), overview.Sargas[2].Sarga)
}

func TestStatsRecordSargaCount_Overwrite(t *testing.T) {
	cleanup := setupServiceDB(t)
	defer cleanup()

	service := NewStatsService(repository.NewStatsRepository(), nil)

	require.NoError(t, service.RecordSargaCount(1, 1, 50))
	require.NoError(t, service.RecordSargaCount(1, 1, 77))
	require.NoError(t, service.RecomputeKanda(1))

	overview, err := service.Overview(1)
	require.NoError(t, err)
	require.NotNil(t, overview.Kanda)
	assert.Equal(t, uint(77), overview.Kanda.TotalSlokas)
}

func TestStatsRecomputeKanda_NoData(t *testing.T) {
	cleanup := setupServiceDB(t)
	defer cleanup()

	service := NewStatsService(repository.NewStatsRepository(), nil)

	// 没有任何章统计时不写卷汇总
	require.NoError(t, service.RecomputeKanda(3))

	overview, err := service.Overview(3)
	require.NoError(t, err)
	assert.Nil(t, overview.Kanda)
	assert.Empty(t, overview.Sargas)
}

func TestStatsValidation(t *testing.T) {
	cleanup := setupServiceDB(t)
	defer cleanup()

	service := NewStatsService(repository.NewStatsRepository(), nil)

	assert.Error(t, service.RecordSargaCount(0, 1, 10))
	assert.Error(t, service.RecordSargaCount(1, 0, 10))
	assert.Error(t, service.RecordSargaCount(1, 1, -1))

	_, err := service.Overview(0)
	assert.Error(t, err)
}
