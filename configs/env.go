package configs

// .env 文件的读取

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadEnvFile 读取 .env 文件中的变量，已存在的环境变量不会被覆盖
//
// path 为空时读取当前目录下的 .env；文件不存在时不算错误，除非显式指定了路径
func LoadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("Failed to load env file %s: %w", path, err)
}
