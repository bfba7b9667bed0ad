package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/visitorhub/internal/flagx"
	"github.com/dmitrijs2005/visitorhub/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// strings such as "15m" or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP string `json:"endpoint_addr_http"`
	EndpointAddrGRPC string `json:"endpoint_addr_grpc"`
	LogLevel         string `json:"log_level"`

	DatabaseDSN       string         `json:"database_dsn"`
	DBMaxOpenConns    int            `json:"db_max_open_conns"`
	DBMaxIdleConns    int            `json:"db_max_idle_conns"`
	DBConnMaxLifetime timex.Duration `json:"db_conn_max_lifetime"`
	DBQueryTimeout    timex.Duration `json:"db_query_timeout"`

	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	BcryptCost                  int            `json:"bcrypt_cost"`

	DefaultPageSize int      `json:"default_page_size"`
	MaxPageSize     int      `json:"max_page_size"`
	CORSOrigins     []string `json:"cors_origins"`
	// PublicVisitorList is a pointer so an absent key keeps the current value.
	PublicVisitorList *bool `json:"public_visitor_list"`

	RedisAddr        string         `json:"redis_addr"`
	RedisPassword    string         `json:"redis_password"`
	RedisDB          int            `json:"redis_db"`
	LoginMaxAttempts int            `json:"login_max_attempts"`
	LoginCooldown    timex.Duration `json:"login_cooldown"`

	S3AccessKey        string         `json:"s3_access_key"`
	S3SecretKey        string         `json:"s3_secret_key"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	AvatarExtensions   []string       `json:"avatar_extensions"`
	AvatarUploadExpiry timex.Duration `json:"avatar_upload_expiry"`
}

// parseJson loads the file named by -c/-config, if any, and copies every
// field present (non-zero) in it onto config. An unreadable or invalid file
// panics.
func parseJson(config *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.LogLevel, c.LogLevel)

	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setInt(&config.DBMaxOpenConns, c.DBMaxOpenConns)
	setInt(&config.DBMaxIdleConns, c.DBMaxIdleConns)
	setDuration(&config.DBConnMaxLifetime, c.DBConnMaxLifetime)
	setDuration(&config.DBQueryTimeout, c.DBQueryTimeout)

	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setInt(&config.BcryptCost, c.BcryptCost)

	setInt(&config.DefaultPageSize, c.DefaultPageSize)
	setInt(&config.MaxPageSize, c.MaxPageSize)
	if len(c.CORSOrigins) > 0 {
		config.CORSOrigins = c.CORSOrigins
	}
	if c.PublicVisitorList != nil {
		config.PublicVisitorList = *c.PublicVisitorList
	}

	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setInt(&config.RedisDB, c.RedisDB)
	setInt(&config.LoginMaxAttempts, c.LoginMaxAttempts)
	setDuration(&config.LoginCooldown, c.LoginCooldown)

	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if len(c.AvatarExtensions) > 0 {
		config.AvatarExtensions = c.AvatarExtensions
	}
	setDuration(&config.AvatarUploadExpiry, c.AvatarUploadExpiry)
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
