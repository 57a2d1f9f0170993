package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/learning-journal/journal/internal/flagx"
	"github.com/learning-journal/journal/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Only keys that
// are present override the current values; booleans are pointers so an
// explicit false can be told apart from a missing key.
type JsonConfig struct {
	EndpointAddrHTTP        string         `json:"endpoint_addr_http"`
	DatabaseDSN             string         `json:"database_dsn"`
	SecretKey               string         `json:"secret_key"`
	SessionValidityDuration timex.Duration `json:"session_validity_duration"`
	AuthUsername            string         `json:"auth_username"`
	AuthPasswordHash        string         `json:"auth_password_hash"`
	CookieSecure            *bool          `json:"cookie_secure"`
	Debug                   *bool          `json:"debug"`
	S3RootUser              string         `json:"s3_root_user"`
	S3RootPassword          string         `json:"s3_root_password"`
	S3Bucket                string         `json:"s3_bucket"`
	S3Region                string         `json:"s3_region"`
	S3BaseEndpoint          string         `json:"s3_base_endpoint"`
}

// parseJson loads the file named by -c/-config in args, if any.
// A missing or malformed file panics.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}
	if err := loadJSONFile(config, path); err != nil {
		panic(err)
	}
}

func loadJSONFile(config *Config, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	c.apply(config)
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.SessionValidityDuration.Duration != 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	setString(&config.AuthUsername, c.AuthUsername)
	setString(&config.AuthPasswordHash, c.AuthPasswordHash)
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.Debug != nil {
		config.Debug = *c.Debug
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
