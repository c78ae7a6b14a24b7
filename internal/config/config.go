package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string

	// AllowedOrigins is the explicit CORS allow-list. Credentialed CORS
	// forbids wildcards, so Validate rejects any "*" entry.
	AllowedOrigins []string

	// SecureCookies selects the cookie mode for the whole process:
	// true  -> Secure + SameSite=None (cross-site frontends over HTTPS)
	// false -> SameSite=Lax, not Secure (local development)
	SecureCookies bool

	RedisAddr     string
	RedisPassword string
}

// defaultOrigins covers the three demo frontends: hub, user portal, admin portal.
var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:4200",
	"http://localhost:4300",
}

func Load() Config {

	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg := Config{

		AppPort: getEnv("APP_PORT", "8080"),

		AllowedOrigins: splitOrigins(os.Getenv("ALLOWED_ORIGINS")),

		SecureCookies: os.Getenv("SECURE_COOKIES") == "true",

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}

	return cfg

}

// Validate rejects configurations that would silently weaken the
// credentialed-CORS contract. Called once at startup; a failure here
// must abort the process.
func (c Config) Validate() error {
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("config: allowed origins must not be empty")
	}
	for _, origin := range c.AllowedOrigins {
		if origin == "" {
			return fmt.Errorf("config: empty origin in allow-list")
		}
		if strings.Contains(origin, "*") {
			return fmt.Errorf(
				"config: wildcard origin %q is not allowed with credentialed CORS",
				origin,
			)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return defaultOrigins
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
