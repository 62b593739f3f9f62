// Package config handles configuration for the server component: defaults,
// environment, an optional JSON or YAML file and command-line flags, applied
// in that order.
package config

import "time"

// Upload backends.
const (
	UploadBackendEndpoint = "endpoint"
	UploadBackendS3       = "s3"
)

// Config holds runtime settings for the RentFinder server.
//
// Fields:
//   - HTTPAddress: bind address of the HTTP server.
//   - StoreDSN: postgres://, mongodb:// or memory:// store location.
//   - MongoDatabase: database name used with a mongodb DSN.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - UploadBackend: "endpoint" (multipart upload service) or "s3".
//   - RedisAddress: session registry; empty keeps sessions in process memory.
//   - NATSURL: listing events; empty disables publishing.
//   - SMTPHost: reset mail relay; empty logs reset links instead of sending them.
type Config struct {
	HTTPAddress   string
	StoreDSN      string
	MongoDatabase string

	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	ResetTokenValidityDuration   time.Duration
	RoleCacheDuration            time.Duration

	ResetLinkBaseURL string
	ResetRateLimit   int
	ResetRateWindow  time.Duration
	SignInRateLimit  int
	SignInRateWindow time.Duration

	UploadBackend  string
	UploadEndpoint string
	UploadPreset   string
	UploadTimeout  time.Duration

	S3RootUser      string
	S3RootPassword  string
	S3Bucket        string
	S3Region        string
	S3BaseEndpoint  string
	S3PublicBaseURL string

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	NATSURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	LogFormat string
	LogLevel  string

	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.HTTPAddress = ":8080"
	c.StoreDSN = "memory://"
	c.MongoDatabase = "rentfinder"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 7 * 24 * time.Hour
	c.ResetTokenValidityDuration = time.Hour
	c.RoleCacheDuration = 15 * time.Minute
	c.ResetLinkBaseURL = "http://localhost:8080/forgot-password"
	c.ResetRateLimit = 3
	c.ResetRateWindow = 15 * time.Minute
	c.SignInRateLimit = 10
	c.SignInRateWindow = 5 * time.Minute
	c.UploadBackend = UploadBackendS3
	c.UploadEndpoint = ""
	c.UploadPreset = "rentfinder"
	c.UploadTimeout = 30 * time.Second
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "rentfinder"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3PublicBaseURL = "http://127.0.0.1:9000/rentfinder"
	c.SMTPPort = 587
	c.SMTPFrom = "no-reply@rentfinder.local"
	c.LogFormat = "json"
	c.LogLevel = "info"
	c.CORSAllowedOrigins = []string{"*"}
	c.ShutdownTimeout = 10 * time.Second
}

// LoadConfig builds a Config by applying defaults, then the environment, then
// an optional config file and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
