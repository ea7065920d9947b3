package configs

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// ApiClientConfig - настройки транспортного клиента.
type ApiClientConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

type SessionConfig struct {
	// FilePath - путь к файлу со снимком сессии (аналог localStorage).
	FilePath string
}

type StdoutLogConfig struct {
	Level string // По умолчанию debug
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string // По умолчанию info
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	ApiClient    ApiClientConfig
	Session      SessionConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LoadConfig загружает конфигурацию из переменных окружения.
// Рекомендуется использовать .env файл для локальной разработки.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		// Для консольного клиента .env не обязателен: конфигурация
		// может прийти из окружения целиком.
		log.Println("No .env file found, using environment variables")
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "admin-console")

	cfg.ApiClient.BaseURL = os.Getenv("ADMIN_API_BASE_URL")
	if cfg.ApiClient.BaseURL == "" {
		return nil, fmt.Errorf("ADMIN_API_BASE_URL environment variable is required")
	}
	cfg.ApiClient.TimeoutSeconds = getEnvAsInt("ADMIN_API_TIMEOUT_SECONDS", 15)

	cfg.Session.FilePath = getEnvAsString("SESSION_FILE", defaultSessionFile())

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}

		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")

	return cfg, nil
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".admin-console-session.json"
	}
	return filepath.Join(home, ".admin-console", "session.json")
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt читает переменную окружения как int или возвращает значение по умолчанию
// Логирует ошибку, если переменная есть, но не может быть преобразована в int
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

// getEnvAsBool читает переменную окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}
