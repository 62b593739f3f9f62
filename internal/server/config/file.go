package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/flagx"
	"github.com/dmitrijs2005/rentfinder/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration, decoded from JSON or
// YAML. Durations accept "15m" style strings or integer nanoseconds. Zero
// values leave the current setting untouched.
type FileConfig struct {
	HTTPAddress   string `json:"http_address" yaml:"http_address"`
	StoreDSN      string `json:"store_dsn" yaml:"store_dsn"`
	MongoDatabase string `json:"mongo_database" yaml:"mongo_database"`

	SecretKey                    string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration"`
	ResetTokenValidityDuration   timex.Duration `json:"reset_token_validity_duration" yaml:"reset_token_validity_duration"`
	RoleCacheDuration            timex.Duration `json:"role_cache_duration" yaml:"role_cache_duration"`

	ResetLinkBaseURL string         `json:"reset_link_base_url" yaml:"reset_link_base_url"`
	ResetRateLimit   int            `json:"reset_rate_limit" yaml:"reset_rate_limit"`
	ResetRateWindow  timex.Duration `json:"reset_rate_window" yaml:"reset_rate_window"`
	SignInRateLimit  int            `json:"signin_rate_limit" yaml:"signin_rate_limit"`
	SignInRateWindow timex.Duration `json:"signin_rate_window" yaml:"signin_rate_window"`

	UploadBackend  string         `json:"upload_backend" yaml:"upload_backend"`
	UploadEndpoint string         `json:"upload_endpoint" yaml:"upload_endpoint"`
	UploadPreset   string         `json:"upload_preset" yaml:"upload_preset"`
	UploadTimeout  timex.Duration `json:"upload_timeout" yaml:"upload_timeout"`

	S3RootUser      string `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword  string `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket        string `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region        string `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint  string `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3PublicBaseURL string `json:"s3_public_base_url" yaml:"s3_public_base_url"`

	RedisAddress  string `json:"redis_address" yaml:"redis_address"`
	RedisPassword string `json:"redis_password" yaml:"redis_password"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db"`

	NATSURL string `json:"nats_url" yaml:"nats_url"`

	SMTPHost     string `json:"smtp_host" yaml:"smtp_host"`
	SMTPPort     int    `json:"smtp_port" yaml:"smtp_port"`
	SMTPUser     string `json:"smtp_user" yaml:"smtp_user"`
	SMTPPassword string `json:"smtp_password" yaml:"smtp_password"`
	SMTPFrom     string `json:"smtp_from" yaml:"smtp_from"`

	LogFormat string `json:"log_format" yaml:"log_format"`
	LogLevel  string `json:"log_level" yaml:"log_level"`

	CORSAllowedOrigins []string       `json:"cors_allowed_origins" yaml:"cors_allowed_origins"`
	ShutdownTimeout    timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// parseFile loads the file named by -c or -config, if any, and overlays it on
// config. Files ending in .yaml or .yml are YAML, anything else is JSON. An
// unreadable or malformed file panics.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag(os.Args[1:])
	if path == "" {
		return
	}

	fc, err := readFile(path)
	if err != nil {
		panic(err)
	}
	fc.apply(config)
}

func readFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return fc, nil
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.HTTPAddress, fc.HTTPAddress)
	setString(&c.StoreDSN, fc.StoreDSN)
	setString(&c.MongoDatabase, fc.MongoDatabase)

	setString(&c.SecretKey, fc.SecretKey)
	setDuration(&c.AccessTokenValidityDuration, fc.AccessTokenValidityDuration)
	setDuration(&c.RefreshTokenValidityDuration, fc.RefreshTokenValidityDuration)
	setDuration(&c.ResetTokenValidityDuration, fc.ResetTokenValidityDuration)
	setDuration(&c.RoleCacheDuration, fc.RoleCacheDuration)

	setString(&c.ResetLinkBaseURL, fc.ResetLinkBaseURL)
	setInt(&c.ResetRateLimit, fc.ResetRateLimit)
	setDuration(&c.ResetRateWindow, fc.ResetRateWindow)
	setInt(&c.SignInRateLimit, fc.SignInRateLimit)
	setDuration(&c.SignInRateWindow, fc.SignInRateWindow)

	setString(&c.UploadBackend, fc.UploadBackend)
	setString(&c.UploadEndpoint, fc.UploadEndpoint)
	setString(&c.UploadPreset, fc.UploadPreset)
	setDuration(&c.UploadTimeout, fc.UploadTimeout)

	setString(&c.S3RootUser, fc.S3RootUser)
	setString(&c.S3RootPassword, fc.S3RootPassword)
	setString(&c.S3Bucket, fc.S3Bucket)
	setString(&c.S3Region, fc.S3Region)
	setString(&c.S3BaseEndpoint, fc.S3BaseEndpoint)
	setString(&c.S3PublicBaseURL, fc.S3PublicBaseURL)

	setString(&c.RedisAddress, fc.RedisAddress)
	setString(&c.RedisPassword, fc.RedisPassword)
	setInt(&c.RedisDB, fc.RedisDB)

	setString(&c.NATSURL, fc.NATSURL)

	setString(&c.SMTPHost, fc.SMTPHost)
	setInt(&c.SMTPPort, fc.SMTPPort)
	setString(&c.SMTPUser, fc.SMTPUser)
	setString(&c.SMTPPassword, fc.SMTPPassword)
	setString(&c.SMTPFrom, fc.SMTPFrom)

	setString(&c.LogFormat, fc.LogFormat)
	setString(&c.LogLevel, fc.LogLevel)

	if len(fc.CORSAllowedOrigins) > 0 {
		c.CORSAllowedOrigins = fc.CORSAllowedOrigins
	}
	setDuration(&c.ShutdownTimeout, fc.ShutdownTimeout)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
