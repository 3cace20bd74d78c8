package config

import (
	"flag"
	"os"
	"time"

	"github.com/yassinebz/expensetracker/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity for default sessions, minutes
//	-m int      refresh token validity for remember-me sessions, minutes
//	-n string   refresh cookie name
//	-p string   refresh cookie path
//	-k          mark the refresh cookie Secure
//	-x string   refresh cookie SameSite policy (Lax, Strict, None)
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration flags
// are accepted as integers in minutes and converted to time.Duration values.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-r", "-m", "-n", "-p", "-k", "-x"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")
	rememberMeValidityDuration := fs.Int("m", int(config.RefreshTokenRememberMeValidityDuration.Minutes()), "refresh_token_remember_me_validity_duration (in minutes)")

	fs.StringVar(&config.RefreshCookieName, "n", config.RefreshCookieName, "refresh cookie name")
	fs.StringVar(&config.RefreshCookiePath, "p", config.RefreshCookiePath, "refresh cookie path")
	fs.BoolVar(&config.CookieSecure, "k", config.CookieSecure, "set the Secure attribute on the refresh cookie")
	fs.StringVar(&config.CookieSameSite, "x", config.CookieSameSite, "refresh cookie SameSite policy")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
	config.RefreshTokenRememberMeValidityDuration = time.Duration(*rememberMeValidityDuration) * time.Minute
}
