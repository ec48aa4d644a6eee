// Управление конфигурацией приложения из переменных окружения.
// Содержит структуру Config для хранения параметров и функцию ReadConfig для их загрузки из переменных окружения.
//
// Основные возможности:
//   - Загрузка конфигурации из переменных окружения с использованием тегов struct.
//   - Валидация обязательных переменных.
//   - Преобразование типов данных из переменных окружения (string, int, bool).
//   - Маскировка секретных значений (passwords) в логах.
//   - Предоставление значений по умолчанию для некоторых параметров.
package config

import (
	"log/slog"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	SecretKey string `env:"SECRET_KEY"`

	AWSRegion     string `env:"AWS_REGION"`
	AWSAccessKey  string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey  string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSEndpoint   string `env:"AWS_S3_ENDPOINT_URL"`
	AWSBucketName string `env:"AWS_S3_BUCKET_NAME"`

	DatabaseDSN string `env:"DATABASE_URL"`

	DefaultUserEmail string `env:"DEFAULT_EMAIL"`

	EmailDisabled bool   `env:"EMAIL_DISABLED"`
	EmailHost     string `env:"EMAIL_HOST"`
	EmailUser     string `env:"EMAIL_HOST_USER"`
	EmailPassword string `env:"EMAIL_HOST_PASSWORD"`
	EmailPort     int    `env:"EMAIL_PORT"`
	EmailFrom     string `env:"EMAIL_FROM"`
	EmailWorkers  int    `env:"EMAIL_WORKERS"`

	WebURLRaw string `env:"WEB_URL"`
	WebURL    *url.URL

	SiteTitle       string `env:"SITE_TITLE"`
	SiteDescription string `env:"SITE_DESCRIPTION"`

	FrontFilesPath string `env:"FRONT_PATH"`

	SessionsDBPath string `env:"SESSIONS_DB_PATH"`
	AutosaveDBPath string `env:"AUTOSAVE_DB_PATH"`

	// Интервал тишины автосохранения в секундах
	AutosaveIntervalSec int `env:"AUTOSAVE_INTERVAL"`

	SignUpEnable    bool `env:"SIGN_UP_ENABLE"`
	Demo            bool `env:"DEMO"`
	CaptchaDisabled bool `env:"CAPTCHA_DISABLED"`
}

// AutosaveInterval возвращает интервал тишины автосохранения.
func (c *Config) AutosaveInterval() time.Duration {
	return time.Duration(c.AutosaveIntervalSec) * time.Second
}

// ReadConfig загружает конфигурацию приложения из переменных окружения и выполняет валидацию. Возвращает структуру Config с загруженными параметрами. Если WebURL не задан, приложение завершает работу с ошибкой. Обязательные переменные валидируются, типы данных преобразуются из строк, а секретные значения маскируются в логах.
func ReadConfig() *Config {
	config := &Config{}

	loadFromEnv(config)

	// Check required envs
	if config.WebURLRaw == "" {
		slog.Error("WEB_URL is required")
		os.Exit(1)
	} else {
		var err error
		config.WebURL, err = url.Parse(config.WebURLRaw)
		if err != nil {
			slog.Error("WEB_URL incorrect", "err", err)
			os.Exit(1)
		}
	}

	if config.SiteTitle == "" {
		config.SiteTitle = "GrowHub Tips"
	}

	if config.AutosaveIntervalSec <= 0 || config.AutosaveIntervalSec > 300 {
		config.AutosaveIntervalSec = 20
	}

	if config.EmailWorkers <= 0 {
		config.EmailWorkers = 5
	}

	return config
}

// loadFromEnv присваивает полям структуры значения переменных окружения.
// Имя переменной для каждого поля лежит в его теге env, поля без тега
// пропускаются. Непарсящиеся числа и флаги оставляют значение по умолчанию.
func loadFromEnv(cfg *Config) {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}

		raw, ok := os.LookupEnv(envName)
		if !ok || raw == "" {
			continue
		}

		slog.Info("Set config value",
			slog.String("key", t.Name()+"."+field.Name),
			slog.String("value", maskSecret(field.Name, raw)),
			slog.String("source", "ENVIRONMENT"),
		)

		switch v.Field(i).Interface().(type) {
		case string:
			v.Field(i).SetString(raw)
		case int:
			n, err := strconv.Atoi(raw)
			if err != nil {
				slog.Warn("Config value is not a number, keep default", "env", envName)
				continue
			}
			v.Field(i).SetInt(int64(n))
		case bool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				slog.Warn("Config value is not a bool, keep default", "env", envName)
				continue
			}
			v.Field(i).SetBool(b)
		}
	}
}

// maskSecret скрывает середину секретного значения в стартовом логе.
func maskSecret(fieldName string, value string) string {
	lower := strings.ToLower(fieldName)
	if !strings.Contains(lower, "pass") && !strings.Contains(lower, "secret") && !strings.Contains(lower, "token") {
		return value
	}

	runes := []rune(value)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}
