package config

import (
	"fmt"
	"strconv"
	"time"
)

// parseEnv overlays values from environment variables. lookup is
// os.LookupEnv outside of tests.
//
//	DATABASE_URL        PostgreSQL DSN
//	PORT                port to listen on (all interfaces)
//	SECRET_KEY          session signing secret
//	SESSION_TTL         session validity, e.g. "12h"
//	AUTH_USERNAME       author login
//	AUTH_PASSWORD_HASH  bcrypt hash of the author password
//	COOKIE_SECURE       true/false
//	DEBUG               true/false
//	S3_ACCESS_KEY, S3_SECRET_KEY, S3_BUCKET, S3_REGION, S3_ENDPOINT
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("DATABASE_URL", &config.DatabaseDSN)
	if port, ok := lookup("PORT"); ok && port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			return fmt.Errorf("invalid PORT %q", port)
		}
		config.EndpointAddrHTTP = "0.0.0.0:" + port
	}
	str("SECRET_KEY", &config.SecretKey)
	if v, ok := lookup("SESSION_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_TTL %q: %w", v, err)
		}
		config.SessionValidityDuration = d
	}
	str("AUTH_USERNAME", &config.AuthUsername)
	str("AUTH_PASSWORD_HASH", &config.AuthPasswordHash)

	for key, dst := range map[string]*bool{"COOKIE_SECURE": &config.CookieSecure, "DEBUG": &config.Debug} {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = b
	}

	str("S3_ACCESS_KEY", &config.S3RootUser)
	str("S3_SECRET_KEY", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_ENDPOINT", &config.S3BaseEndpoint)

	return nil
}
