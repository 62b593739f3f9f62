package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the server reads.
const EnvPrefix = "RENTFINDER_"

// dotEnvFile is loaded, when present, before the environment is read.
// Variables already set in the process win over the file.
var dotEnvFile = ".env"

// parseEnv overlays RENTFINDER_* variables onto config. A value that cannot
// be parsed panics, the same as a broken config file.
func parseEnv(config *Config) {
	if _, err := os.Stat(dotEnvFile); err == nil {
		if err := godotenv.Load(dotEnvFile); err != nil {
			panic(fmt.Errorf("load %s: %w", dotEnvFile, err))
		}
	}

	envString("HTTP_ADDRESS", &config.HTTPAddress)
	envString("STORE_DSN", &config.StoreDSN)
	envString("MONGO_DATABASE", &config.MongoDatabase)

	envString("SECRET_KEY", &config.SecretKey)
	envDuration("ACCESS_TOKEN_TTL", &config.AccessTokenValidityDuration)
	envDuration("REFRESH_TOKEN_TTL", &config.RefreshTokenValidityDuration)
	envDuration("RESET_TOKEN_TTL", &config.ResetTokenValidityDuration)
	envDuration("ROLE_CACHE_TTL", &config.RoleCacheDuration)

	envString("RESET_LINK_BASE_URL", &config.ResetLinkBaseURL)
	envInt("RESET_RATE_LIMIT", &config.ResetRateLimit)
	envDuration("RESET_RATE_WINDOW", &config.ResetRateWindow)
	envInt("SIGNIN_RATE_LIMIT", &config.SignInRateLimit)
	envDuration("SIGNIN_RATE_WINDOW", &config.SignInRateWindow)

	envString("UPLOAD_BACKEND", &config.UploadBackend)
	envString("UPLOAD_ENDPOINT", &config.UploadEndpoint)
	envString("UPLOAD_PRESET", &config.UploadPreset)
	envDuration("UPLOAD_TIMEOUT", &config.UploadTimeout)

	envString("S3_ROOT_USER", &config.S3RootUser)
	envString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	envString("S3_BUCKET", &config.S3Bucket)
	envString("S3_REGION", &config.S3Region)
	envString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	envString("S3_PUBLIC_BASE_URL", &config.S3PublicBaseURL)

	envString("REDIS_ADDRESS", &config.RedisAddress)
	envString("REDIS_PASSWORD", &config.RedisPassword)
	envInt("REDIS_DB", &config.RedisDB)

	envString("NATS_URL", &config.NATSURL)

	envString("SMTP_HOST", &config.SMTPHost)
	envInt("SMTP_PORT", &config.SMTPPort)
	envString("SMTP_USER", &config.SMTPUser)
	envString("SMTP_PASSWORD", &config.SMTPPassword)
	envString("SMTP_FROM", &config.SMTPFrom)

	envString("LOG_FORMAT", &config.LogFormat)
	envString("LOG_LEVEL", &config.LogLevel)

	if v, ok := os.LookupEnv(EnvPrefix + "CORS_ALLOWED_ORIGINS"); ok {
		config.CORSAllowedOrigins = splitList(v)
	}
	envDuration("SHUTDOWN_TIMEOUT", &config.ShutdownTimeout)
}

func envString(name string, dst *string) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		*dst = v
	}
}

func envInt(name string, dst *int) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		panic(fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
	}
	*dst = n
}

func envDuration(name string, dst *time.Duration) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		panic(fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
	}
	*dst = d
}

// splitList splits a comma separated list, dropping blanks.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
