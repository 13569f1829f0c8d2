package utils

// 日志相关工具

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"
)

// rotatedLogFilePattern 用于匹配轮转日志文件名
const rotatedLogFilePattern = `^(.+?)_rotated\.(\d+)\.log$`

// rotatedLogFileFormat 为轮转日志文件名格式
const rotatedLogFileFormat = "%s_rotated.%d.log"

// rotatedLogFileRegex 是用于匹配轮转日志文件名的正则表达式
var rotatedLogFileRegex = regexp.MustCompile(rotatedLogFilePattern)

// rotatedLogFileName 是目录中一个已轮转的日志文件
type rotatedLogFileName struct {
	baseName string // 基础文件名，不含轮转部分和扩展名
	logId    int    // 轮转日志文件的 ID
	fullName string // 完整的轮转日志文件名
}

// LogWriter 是简单的日志写入器，支持日志轮转
//
// slog 的 Handler 可能被多个协程同时调用，所以写入时加锁
type LogWriter struct {
	mu                sync.Mutex
	filePath          string
	fileName          string
	fileDir           string
	maxSize           int64 // 以字节为单位的最大文件大小
	maxHistoricalLogs int   // 最大历史日志文件数量
	file              *os.File
	closed            bool
}

// NewLogWriter 创建一个新的 LogWriter 实例
func NewLogWriter(filePath string, maxSize int64, maxHistoricalLogs int) (*LogWriter, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("log file max size should be positive, got %d", maxSize)
	}
	fileDir := filepath.Dir(filePath)
	// 创建必要目录
	if err := os.MkdirAll(fileDir, 0755); err != nil {
		return nil, fmt.Errorf("Failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("Failed to open log file: %w", err)
	}
	return &LogWriter{
		filePath:          filePath,
		fileName:          filepath.Base(filePath),
		fileDir:           fileDir,
		maxSize:           maxSize,
		maxHistoricalLogs: maxHistoricalLogs,
		file:              file,
	}, nil
}

// baseNameWithoutExt 获取路径的文件名（不含扩展名）
func baseNameWithoutExt(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

// listRotatedLogs 按 ID 升序列出目录下当前日志文件对应的轮转文件
func (lw *LogWriter) listRotatedLogs() ([]rotatedLogFileName, error) {
	files, err := os.ReadDir(lw.fileDir)
	if err != nil {
		return nil, fmt.Errorf("Failed to read log directory: %w", err)
	}
	currentBase := baseNameWithoutExt(lw.fileName)
	rotated := []rotatedLogFileName{}
	for _, file := range files {
		submatches := rotatedLogFileRegex.FindStringSubmatch(file.Name())
		if len(submatches) != 3 || submatches[1] != currentBase {
			continue
		}
		logId, parseErr := strconv.ParseInt(submatches[2], 10, 32)
		if parseErr != nil {
			continue
		}
		rotated = append(rotated, rotatedLogFileName{
			fullName: file.Name(),
			logId:    int(logId),
			baseName: submatches[1],
		})
	}
	sort.Slice(rotated, func(i, j int) bool {
		return rotated[i].logId < rotated[j].logId
	})
	return rotated, nil
}

// rotateLogs 执行日志轮转，将当前日志文件重命名为轮转文件，并管理历史日志文件数量
func (lw *LogWriter) rotateLogs() error {
	lw.file.Close()
	rotated, err := lw.listRotatedLogs()
	if err != nil {
		return err
	}
	// 如果超过最大历史日志文件数量，删除最旧的文件
	numHistoricalLogs := len(rotated)
	if numHistoricalLogs >= lw.maxHistoricalLogs {
		// +1 是算上了当前的日志文件
		numOverflow := numHistoricalLogs + 1 - lw.maxHistoricalLogs
		if numOverflow > numHistoricalLogs {
			numOverflow = numHistoricalLogs
		}
		for i := numHistoricalLogs - numOverflow; i < numHistoricalLogs; i++ {
			toDelete := filepath.Join(lw.fileDir, rotated[i].fullName)
			if err := os.Remove(toDelete); err != nil {
				return fmt.Errorf("Failed to delete old log file '%s': %w", toDelete, err)
			}
		}
		rotated = rotated[:numHistoricalLogs-numOverflow]
	}
	// 依次重命名现有的历史日志文件，ID 加 1
	for i := len(rotated) - 1; i >= 0; i-- {
		oldPath := filepath.Join(lw.fileDir, rotated[i].fullName)
		newPath := filepath.Join(lw.fileDir, fmt.Sprintf(rotatedLogFileFormat, rotated[i].baseName, rotated[i].logId+1))
		if err := os.Rename(oldPath, newPath); err != nil {
			return fmt.Errorf("Failed to rename log file '%s' to '%s': %w", oldPath, newPath, err)
		}
	}
	if lw.maxHistoricalLogs > 0 {
		// 当前日志文件成为 ID 为 1 的轮转文件
		rotatedPath := filepath.Join(lw.fileDir, fmt.Sprintf(rotatedLogFileFormat, baseNameWithoutExt(lw.fileName), 1))
		if err := os.Rename(lw.filePath, rotatedPath); err != nil {
			return fmt.Errorf("Failed to rotate current log file to '%s': %w", rotatedPath, err)
		}
	} else if err := os.Remove(lw.filePath); err != nil {
		return fmt.Errorf("Failed to truncate log file: %w", err)
	}
	lw.file, err = os.OpenFile(lw.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("Failed to open new log file: %w", err)
	}
	return nil
}

// Write 写入日志数据，并在达到最大文件大小时进行轮转，实现了 io.Writer 接口
func (lw *LogWriter) Write(p []byte) (n int, err error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if lw.closed {
		return 0, errors.New("LogWriter is closed")
	}
	fileInfo, err := lw.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("Failed to get log file info: %w", err)
	}
	// 如果写入后超过最大大小，则进行轮转；空文件不轮转，避免单条超长日志反复轮转
	if fileInfo.Size() > 0 && fileInfo.Size()+int64(len(p)) > lw.maxSize {
		if err := lw.rotateLogs(); err != nil {
			return 0, fmt.Errorf("Failed to rotate logs: %w", err)
		}
	}
	return lw.file.Write(p)
}

// Close 关闭日志写入器以及相关文件资源
func (lw *LogWriter) Close() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if lw.closed {
		return nil
	}
	lw.closed = true
	return lw.file.Close()
}
