package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	Storage StorageConfig
	Backup  BackupConfig
	Vision  VisionConfig
	CORS    CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Backup.ensureDir(cfg.Storage.DataDir)
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SKLAD_APP_ENV" default:"dev"`
	Port         string `envconfig:"SKLAD_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SKLAD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SKLAD_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type StorageConfig struct {
	// DataDir is the app-private document root; the part catalog lives in
	// DataDir/storage as flat JSON documents.
	DataDir string `envconfig:"SKLAD_DATA_DIR" default:"./data"`
}

// StorageDir returns the directory holding parts.json, history.json and
// favorites.json.
func (s StorageConfig) StorageDir() string {
	return filepath.Join(s.DataDir, "storage")
}

type BackupConfig struct {
	Dir string `envconfig:"SKLAD_BACKUP_DIR"`
}

func (b *BackupConfig) ensureDir(dataDir string) {
	if b.Dir == "" {
		b.Dir = filepath.Join(dataDir, "backups")
	}
}

type VisionConfig struct {
	APIKey   string        `envconfig:"SKLAD_VISION_API_KEY"`
	Endpoint string        `envconfig:"SKLAD_VISION_ENDPOINT" default:"https://vision.googleapis.com/v1/images:annotate"`
	Timeout  time.Duration `envconfig:"SKLAD_VISION_TIMEOUT" default:"15s"`
}

// Enabled reports whether the OCR collaborator is configured. Scanning
// endpoints degrade to text-only extraction when it is not.
func (v VisionConfig) Enabled() bool {
	return strings.TrimSpace(v.APIKey) != ""
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SKLAD_CORS_ALLOWED_ORIGINS" default:"http://localhost:8081,http://localhost:19006"`
}
