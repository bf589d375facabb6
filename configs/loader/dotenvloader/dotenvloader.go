package dotenvloader

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DotEnvLoader читает переменные из .env файла, значения из окружения
// процесса имеют приоритет над файлом.
type DotEnvLoader struct {
	Path string
}

func (l DotEnvLoader) Load() (map[string]string, error) {
	path := l.Path
	if path == "" {
		path = ".env"
	}

	envs, err := godotenv.Read(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		envs = make(map[string]string)
	}

	for _, pair := range os.Environ() {
		key, value, found := strings.Cut(pair, "=")
		if found {
			envs[key] = value
		}
	}

	return envs, nil
}
