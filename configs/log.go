package configs

// godial 日志文件配置
//
// CLI 只有在指定了 --log-file 或 DIAL_LOG_FILE_PATH 时才写日志文件，否则只输出到 STDERR

import (
	"fmt"
	"os"
	"strconv"
)

// 日志文件相关的环境变量名
const (
	// 日志文件路径，设置后 CLI 会同时写入该文件
	EnvLogFilePath = "DIAL_LOG_FILE_PATH"
	// 单个日志文件的最大字节数，必须为正数
	EnvLogFileMaxSize = "DIAL_LOG_FILE_MAX_SIZE"
	// 保留的轮转日志数量，0 表示轮转时直接丢弃旧日志
	EnvLogFileMaxHistorical = "DIAL_LOG_FILE_MAX_HISTORICAL"
)

var (
	// 日志文件路径 (DIAL_LOG_FILE_PATH)，轮转文件放在同一目录下，命名为 latest_rotated.<n>.log
	logFilePath = "godial-logs/latest.log"
	// 日志文件写到多大时轮转 (DIAL_LOG_FILE_MAX_SIZE)，单位为字节
	logMaxSizeBytes int64 = 5 * 1024 * 1024
	// 最多保留多少个轮转文件 (DIAL_LOG_FILE_MAX_HISTORICAL)
	logMaxHistoricalFiles = 5
)

func GetLogFilePath() string {
	return logFilePath
}

// SetLogFilePath 设置日志文件路径，--log-file 会覆盖环境变量中的值
func SetLogFilePath(path string) {
	logFilePath = path
}

func GetLogMaxSizeBytes() int64 {
	return logMaxSizeBytes
}

func SetLogMaxSizeBytes(size int64) {
	logMaxSizeBytes = size
}

func GetLogMaxHistoricalFiles() int {
	return logMaxHistoricalFiles
}

func SetLogMaxHistoricalFiles(count int) {
	logMaxHistoricalFiles = count
}

// ApplyLogEnv 用 DIAL_LOG_* 环境变量覆盖日志文件配置，未设置的保持默认值
func ApplyLogEnv() error {
	if v := os.Getenv(EnvLogFilePath); v != "" {
		SetLogFilePath(v)
	}
	if v := os.Getenv(EnvLogFileMaxSize); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil || size <= 0 {
			return fmt.Errorf("invalid %s %q, should be a positive integer", EnvLogFileMaxSize, v)
		}
		SetLogMaxSizeBytes(size)
	}
	if v := os.Getenv(EnvLogFileMaxHistorical); v != "" {
		count, err := strconv.ParseInt(v, 10, 32)
		if err != nil || count < 0 {
			return fmt.Errorf("invalid %s %q, should be a non-negative integer", EnvLogFileMaxHistorical, v)
		}
		SetLogMaxHistoricalFiles(int(count))
	}
	return nil
}
