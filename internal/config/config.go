package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

type Config struct {
	Port                 string        `koanf:"port"`
	DBDSN                string        `koanf:"db_dsn"`
	StorageDriver        string        `koanf:"storage_driver"` // file|mem
	StorageDir           string        `koanf:"storage_dir"`
	PublicBaseURL        string        `koanf:"public_base_url"`
	LogFile              string        `koanf:"log_file"`
	LogLevel             string        `koanf:"log_level"`
	BodyLimitMB          int           `koanf:"body_limit_mb"`
	ApprovalPollInterval time.Duration `koanf:"approval_poll_interval"`
	SessionTTL           time.Duration `koanf:"session_ttl"`
	CookieSecure         bool          `koanf:"cookie_secure"`
	TemplatesDir         string        `koanf:"templates_dir"`
	StaticDir            string        `koanf:"static_dir"`
}

func Defaults() Config {
	return Config{
		Port:                 "8080",
		DBDSN:                "vendorhub.db",
		StorageDriver:        "file",
		StorageDir:           "./var/storage",
		PublicBaseURL:        "/media",
		LogFile:              "./vendorhub.log",
		LogLevel:             "info",
		BodyLimitMB:          16,
		ApprovalPollInterval: 30 * time.Second,
		SessionTTL:           7 * 24 * time.Hour,
		TemplatesDir:         "./web/templates",
		StaticDir:            "./web/static",
	}
}

var knownKeys = map[string]bool{}

func init() {
	for _, k := range []string{
		"port", "db_dsn", "storage_driver", "storage_dir", "public_base_url",
		"log_file", "log_level", "body_limit_mb", "approval_poll_interval",
		"session_ttl", "cookie_secure", "templates_dir", "static_dir",
	} {
		knownKeys[k] = true
	}
}

// Load layers defaults, an optional YAML file (CONFIG_FILE) and the
// environment, in that order. A .env file in the working directory is read
// into the environment first if present.
func Load() Config {
	cfg, err := LoadFrom(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Printf("[config] %v; using defaults", err)
		cfg = Defaults()
	}
	log.Printf("[config] PORT=%s DB_DSN=%s STORAGE_DRIVER=%s STORAGE_DIR=%s LOG_FILE=%s APPROVAL_POLL_INTERVAL=%s",
		cfg.Port, cfg.DBDSN, cfg.StorageDriver, cfg.StorageDir, cfg.LogFile, cfg.ApprovalPollInterval)
	return cfg
}

func LoadFrom(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrap(err, "read .env")
	}

	k := koanf.New(".")
	def := Defaults()
	_ = k.Set("port", def.Port)
	_ = k.Set("db_dsn", def.DBDSN)
	_ = k.Set("storage_driver", def.StorageDriver)
	_ = k.Set("storage_dir", def.StorageDir)
	_ = k.Set("public_base_url", def.PublicBaseURL)
	_ = k.Set("log_file", def.LogFile)
	_ = k.Set("log_level", def.LogLevel)
	_ = k.Set("body_limit_mb", def.BodyLimitMB)
	_ = k.Set("approval_poll_interval", def.ApprovalPollInterval.String())
	_ = k.Set("session_ttl", def.SessionTTL.String())
	_ = k.Set("cookie_secure", def.CookieSecure)
	_ = k.Set("templates_dir", def.TemplatesDir)
	_ = k.Set("static_dir", def.StaticDir)

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, errors.Wrapf(err, "read config file %s", path)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", func(key, v string) (string, any) {
		key = strings.ToLower(key)
		if !knownKeys[key] {
			return "", nil
		}
		return key, v
	}), nil); err != nil {
		return Config{}, errors.Wrap(err, "load env variables")
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}); err != nil {
		return Config{}, errors.Wrap(err, "unmarshal config")
	}
	if cfg.ApprovalPollInterval <= 0 {
		cfg.ApprovalPollInterval = def.ApprovalPollInterval
	}
	if cfg.BodyLimitMB <= 0 {
		cfg.BodyLimitMB = def.BodyLimitMB
	}
	return cfg, nil
}
