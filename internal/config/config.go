package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "GOODWORKS"

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	News   NewsConfig   `mapstructure:"news"`
	AI     AIConfig     `mapstructure:"ai"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Port            string   `mapstructure:"port"`
	CORSOrigins     []string `mapstructure:"cors-origins"`
	AdminSecret     string   `mapstructure:"admin-secret"`
	AdminSecretFile string   `mapstructure:"admin-secret-file"`
}

type StoreConfig struct {
	URL            string        `mapstructure:"url"`
	Credential     string        `mapstructure:"credential"`
	CredentialFile string        `mapstructure:"credential-file"`
	MaxConns       int32         `mapstructure:"max-conns"`
	ConnectTimeout time.Duration `mapstructure:"connect-timeout"`
}

// Configured reports whether both the endpoint and the credential are present.
func (s StoreConfig) Configured() bool {
	return strings.TrimSpace(s.URL) != "" && strings.TrimSpace(s.Credential) != ""
}

type NewsConfig struct {
	Provider   string        `mapstructure:"provider"`
	BaseURL    string        `mapstructure:"base-url"`
	APIKey     string        `mapstructure:"api-key"`
	APIKeyFile string        `mapstructure:"api-key-file"`
	Country    string        `mapstructure:"country"`
	Language   string        `mapstructure:"language"`
	PageSize   int           `mapstructure:"page-size"`
	RSSURLs    []string      `mapstructure:"rss-urls"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type AIConfig struct {
	Provider     string        `mapstructure:"provider"`
	Model        string        `mapstructure:"model"`
	BaseURL      string        `mapstructure:"base-url"`
	APIKey       string        `mapstructure:"api-key"`
	APIKeyFile   string        `mapstructure:"api-key-file"`
	GeminiAPIKey string        `mapstructure:"gemini-api-key"`
	OllamaHost   string        `mapstructure:"ollama-host"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

var legacyEnv = map[string]string{
	"server.port":         "PORT",
	"server.admin-secret": "ADMIN_SECRET",
	"server.cors-origins": "CORS_ORIGINS",
	"store.url":           "DATABASE_URL",
	"store.credential":    "DATABASE_PASSWORD",
	"news.api-key":        "NEWSAPI_KEY",
	"ai.api-key":          "OPENAI_API_KEY",
	"ai.gemini-api-key":   "GEMINI_API_KEY",
	"ai.ollama-host":      "OLLAMA_HOST",
}

// NewViper prepares a viper instance with defaults, environment bindings and,
// when file is set or goodworks.yaml exists, a config file. A .env file in the
// working directory is loaded into the environment first.
func NewViper(file string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		envName := EnvPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
		if err := v.BindEnv(key, envName, legacy); err != nil {
			return nil, fmt.Errorf("binding %s: %w", legacy, err)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", file, err)
		}
		return v, nil
	}

	v.AddConfigPath(".")
	v.SetConfigName("goodworks")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8081")
	v.SetDefault("server.cors-origins", []string{"http://localhost:3000"})
	v.SetDefault("server.admin-secret", "")
	v.SetDefault("server.admin-secret-file", "")

	v.SetDefault("store.url", "")
	v.SetDefault("store.credential", "")
	v.SetDefault("store.credential-file", "")
	v.SetDefault("store.max-conns", 4)
	v.SetDefault("store.connect-timeout", 5*time.Second)

	v.SetDefault("news.provider", "newsapi")
	v.SetDefault("news.base-url", "https://newsapi.org/v2")
	v.SetDefault("news.api-key", "")
	v.SetDefault("news.api-key-file", "")
	v.SetDefault("news.country", "us")
	v.SetDefault("news.language", "en")
	v.SetDefault("news.page-size", 5)
	v.SetDefault("news.rss-urls", []string{})
	v.SetDefault("news.timeout", 10*time.Second)

	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.base-url", "")
	v.SetDefault("ai.ollama-host", "")
	v.SetDefault("ai.api-key", "")
	v.SetDefault("ai.api-key-file", "")
	v.SetDefault("ai.gemini-api-key", "")
	v.SetDefault("ai.timeout", 30*time.Second)

	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
}

// Decode unmarshals v and resolves file-backed secrets.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	var err error
	if cfg.Store.Credential, err = optionalSecret(Source{Name: "store credential", Value: cfg.Store.Credential, File: cfg.Store.CredentialFile}); err != nil {
		return nil, err
	}
	if cfg.News.APIKey, err = optionalSecret(Source{Name: "news api key", Value: cfg.News.APIKey, File: cfg.News.APIKeyFile}); err != nil {
		return nil, err
	}
	if cfg.AI.APIKey, err = optionalSecret(Source{Name: "ai api key", Value: cfg.AI.APIKey, File: cfg.AI.APIKeyFile}); err != nil {
		return nil, err
	}
	if cfg.Server.AdminSecret, err = optionalSecret(Source{Name: "admin secret", Value: cfg.Server.AdminSecret, File: cfg.Server.AdminSecretFile}); err != nil {
		return nil, err
	}

	cfg.Server.CORSOrigins = splitList(cfg.Server.CORSOrigins)
	cfg.News.RSSURLs = splitList(cfg.News.RSSURLs)
	return &cfg, nil
}

// Load is NewViper followed by Decode.
func Load(file string) (*Config, error) {
	v, err := NewViper(file)
	if err != nil {
		return nil, err
	}
	return Decode(v)
}

// splitList flattens comma-separated entries coming from environment variables.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
