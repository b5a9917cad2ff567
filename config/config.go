package config

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyFacebookGraphURL   = "facebook.graph_url"
	KeyFacebookAPIVersion = "facebook.api_version"
	KeyImportMaxFileBytes = "import.max_file_bytes"
	KeyImportMaxRows      = "import.max_rows"
	KeyLaunchConcurrency  = "launch.concurrency"
	KeyLaunchDefaultCTA   = "launch.default_cta"
	KeyStorageRegion      = "storage.region"
	KeyStoragePresignTTL  = "storage.presign_ttl"
	KeyStorageKeyPrefix   = "storage.key_prefix"
	KeyServerPort         = "server.port"
	KeyServerOrigins      = "server.allowed_origins"
	KeyLogLevel           = "log.level"
	KeyLogFormat          = "log.format"
)

const EnvPrefix = "ADLAUNCHER"

type Config struct {
	Facebook FacebookConfig `mapstructure:"facebook"`
	Import   ImportConfig   `mapstructure:"import"`
	Launch   LaunchConfig   `mapstructure:"launch"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

type FacebookConfig struct {
	GraphURL         string `mapstructure:"graph_url" validate:"required,url"`
	APIVersion       string `mapstructure:"api_version" validate:"required,startswith=v"`
	AdAccountID      string `mapstructure:"ad_account_id" validate:"omitempty,numeric"`
	AccessToken      string `mapstructure:"access_token"`
	PageID           string `mapstructure:"page_id" validate:"omitempty,numeric"`
	InstagramActorID string `mapstructure:"instagram_actor_id" validate:"omitempty,numeric"`
}

type ImportConfig struct {
	MaxFileBytes int64 `mapstructure:"max_file_bytes" validate:"gt=0"`
	MaxRows      int   `mapstructure:"max_rows" validate:"gt=0"`
}

type LaunchConfig struct {
	Concurrency int    `mapstructure:"concurrency" validate:"min=1,max=16"`
	DefaultCTA  string `mapstructure:"default_cta" validate:"required,uppercase"`
}

type StorageConfig struct {
	Bucket          string        `mapstructure:"bucket"`
	Endpoint        string        `mapstructure:"endpoint" validate:"omitempty,url"`
	Region          string        `mapstructure:"region" validate:"required"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	PresignTTL      time.Duration `mapstructure:"presign_ttl" validate:"gt=0"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port" validate:"min=1,max=65535"`
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"dive,url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

var (
	ErrFacebookNotConfigured = errors.New("facebook ad account and access token are required (set facebook.ad_account_id and facebook.access_token)")
	ErrStorageNotConfigured  = errors.New("storage bucket is not configured (set storage.bucket)")
)

// RequireFacebook reports whether launch credentials are present.
func (c Config) RequireFacebook() error {
	if strings.TrimSpace(c.Facebook.AdAccountID) == "" || strings.TrimSpace(c.Facebook.AccessToken) == "" {
		return ErrFacebookNotConfigured
	}
	if strings.TrimSpace(c.Facebook.PageID) == "" {
		return fmt.Errorf("facebook.page_id is required to create ad creatives")
	}
	return nil
}

func (c Config) RequireStorage() error {
	if strings.TrimSpace(c.Storage.Bucket) == "" {
		return ErrStorageNotConfigured
	}
	return nil
}

// GraphBaseURL joins the Graph host and API version.
func (c FacebookConfig) GraphBaseURL() string {
	return strings.TrimRight(c.GraphURL, "/") + "/" + strings.Trim(c.APIVersion, "/")
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// BindEnv lets ADLAUNCHER_FACEBOOK_ACCESS_TOKEN style variables override file values.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"facebook.ad_account_id", "facebook.access_token", "facebook.page_id", "storage.bucket", "storage.endpoint", "storage.access_key_id", "storage.secret_access_key"} {
		_ = v.BindEnv(key)
	}
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# adlauncher configuration
facebook:
  graph_url: "https://graph.facebook.com"
  api_version: "v21.0"
  ad_account_id: ""
  access_token: ""
  page_id: ""
  instagram_actor_id: ""

import:
  max_file_bytes: 5242880
  max_rows: 1000

launch:
  concurrency: 4
  default_cta: "LEARN_MORE"

storage:
  bucket: ""
  endpoint: ""
  region: "auto"
  access_key_id: ""
  secret_access_key: ""
  presign_ttl: "1h"
  key_prefix: "media/"

server:
  port: 8080
  allowed_origins: []

log:
  level: "info"
  format: "json"
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateStorage(cfg.Storage); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyFacebookGraphURL, "https://graph.facebook.com")
	v.SetDefault(KeyFacebookAPIVersion, "v21.0")
	v.SetDefault(KeyImportMaxFileBytes, 5<<20)
	v.SetDefault(KeyImportMaxRows, 1000)
	v.SetDefault(KeyLaunchConcurrency, 4)
	v.SetDefault(KeyLaunchDefaultCTA, "LEARN_MORE")
	v.SetDefault(KeyStorageRegion, "auto")
	v.SetDefault(KeyStoragePresignTTL, time.Hour)
	v.SetDefault(KeyStorageKeyPrefix, "media/")
	v.SetDefault(KeyServerPort, 8080)
	v.SetDefault(KeyServerOrigins, []string{})
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
}

func validateStorage(storage StorageConfig) error {
	hasKey := strings.TrimSpace(storage.AccessKeyID) != ""
	hasSecret := strings.TrimSpace(storage.SecretAccessKey) != ""
	if hasKey != hasSecret {
		return fmt.Errorf("validation failed: storage.access_key_id and storage.secret_access_key must be set together")
	}
	if strings.HasPrefix(storage.KeyPrefix, "/") {
		return fmt.Errorf("validation failed: storage.key_prefix %q must not start with /", storage.KeyPrefix)
	}
	return nil
}
