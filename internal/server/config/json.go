package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/yassinebz/expensetracker/internal/flagx"
	"github.com/yassinebz/expensetracker/internal/timex"
)

// JsonConfig is the DTO used only for reading JSON configuration files.
// Duration fields accept both strings such as "15m" and integer nanoseconds
// (via timex.Duration). After unmarshalling, values are copied into the
// runtime Config which uses plain time.Duration.
type JsonConfig struct {
	EndpointAddr                           string         `json:"endpoint_addr"`
	DatabaseDSN                            string         `json:"database_dsn"`
	SecretKey                              string         `json:"secret_key"`
	AccessTokenValidityDuration            timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration           timex.Duration `json:"refresh_token_validity_duration"`
	RefreshTokenRememberMeValidityDuration timex.Duration `json:"refresh_token_remember_me_validity_duration"`
	RefreshCookieName                      string         `json:"refresh_cookie_name"`
	RefreshCookiePath                      string         `json:"refresh_cookie_path"`
	CookieSecure                           bool           `json:"cookie_secure"`
	CookieSameSite                         string         `json:"cookie_samesite"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; when neither is set, no JSON file is loaded. An unreadable or
// invalid file panics: the server must not start on a half-applied config.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	config.RefreshTokenRememberMeValidityDuration = time.Duration(c.RefreshTokenRememberMeValidityDuration.Duration)
	config.RefreshCookieName = c.RefreshCookieName
	config.RefreshCookiePath = c.RefreshCookiePath
	config.CookieSecure = c.CookieSecure
	config.CookieSameSite = c.CookieSameSite
}
