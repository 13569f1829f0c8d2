package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogDefaults(t *testing.T) {
	assert.Equal(t, "godial-logs/latest.log", GetLogFilePath())
	assert.Equal(t, int64(5*1024*1024), GetLogMaxSizeBytes())
	assert.Equal(t, 5, GetLogMaxHistoricalFiles())
}

func TestApplyLogEnv(t *testing.T) {
	oldPath, oldSize, oldHistory := GetLogFilePath(), GetLogMaxSizeBytes(), GetLogMaxHistoricalFiles()
	t.Cleanup(func() {
		SetLogFilePath(oldPath)
		SetLogMaxSizeBytes(oldSize)
		SetLogMaxHistoricalFiles(oldHistory)
	})

	t.Setenv(EnvLogFilePath, "logs/dial.log")
	t.Setenv(EnvLogFileMaxSize, "2048")
	t.Setenv(EnvLogFileMaxHistorical, "0")
	require.NoError(t, ApplyLogEnv())
	assert.Equal(t, "logs/dial.log", GetLogFilePath())
	assert.Equal(t, int64(2048), GetLogMaxSizeBytes())
	assert.Equal(t, 0, GetLogMaxHistoricalFiles())

	t.Setenv(EnvLogFileMaxSize, "0")
	assert.Error(t, ApplyLogEnv())
}

func TestApplyLogEnvInvalidHistory(t *testing.T) {
	oldHistory := GetLogMaxHistoricalFiles()
	t.Cleanup(func() { SetLogMaxHistoricalFiles(oldHistory) })

	t.Setenv(EnvLogFilePath, "")
	t.Setenv(EnvLogFileMaxSize, "")
	t.Setenv(EnvLogFileMaxHistorical, "-1")
	assert.Error(t, ApplyLogEnv())
	assert.Equal(t, oldHistory, GetLogMaxHistoricalFiles())

	t.Setenv(EnvLogFileMaxHistorical, "")
	require.NoError(t, ApplyLogEnv())
}
