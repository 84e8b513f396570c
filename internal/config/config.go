package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env                string
	MongoURI           string
	MongoDB            string
	ServerAddr         string
	FrontendOrigin     string
	UpstreamLeadsURL   string
	UpstreamTimeoutSec int
	RequireEmail       bool
	RateLimitLeads     int
	RateLimitWindowSec int
	RedisURL           string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	CacheTTLSeconds    int
	AdminAPIKey        string
	AdminUser          string
	AdminPassword      string
	JWTSecret          string
	AccessTTLMinutes   int
	RefreshTTLMinutes  int
	CookieSecure       bool
	BrevoAPIKey        string
	BrevoSenderEmail   string
	BrevoSenderName    string
	BrevoSandbox       bool
	NotifyEmail        string
	MapsAPIKey         string
	Timezone           *time.Location
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func Load() (*Config, error) {
	_ = godotenv.Load()
	loc, err := time.LoadLocation(getEnv("TZ", "America/Chicago"))
	if err != nil {
		return nil, err
	}

	mongoURI := getEnv("MONGO_URI", "mongodb://localhost:27017/sdr")
	mongoDB := getEnv("MONGO_DB", "")
	if mongoDB == "" {
		mongoDB = mongoDBFromURI(mongoURI)
	}
	if mongoDB == "" {
		mongoDB = "sdr"
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		MongoURI:           mongoURI,
		MongoDB:            mongoDB,
		ServerAddr:         getEnv("SERVER_ADDR", ":8080"),
		FrontendOrigin:     getEnv("FRONTEND_ORIGIN", "http://localhost:3000"),
		UpstreamLeadsURL:   getEnv("UPSTREAM_LEADS_URL", "https://app.samedayramps.com/api/leads"),
		UpstreamTimeoutSec: getEnvInt("UPSTREAM_TIMEOUT_SEC", 15),
		RequireEmail:       getEnv("REQUIRE_EMAIL", "false") == "true",
		RateLimitLeads:     getEnvInt("RATE_LIMIT_LEADS", 5),
		RateLimitWindowSec: getEnvInt("RATE_LIMIT_WINDOW_SEC", 60),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		CacheTTLSeconds:    getEnvInt("CACHE_TTL_SECONDS", 60),
		AdminAPIKey:        getEnv("ADMIN_API_KEY", ""),
		AdminUser:          getEnv("ADMIN_USER", "admin"),
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		AccessTTLMinutes:   getEnvInt("ACCESS_TTL_MINUTES", 15),
		RefreshTTLMinutes:  getEnvInt("REFRESH_TTL_MINUTES", 43200),
		CookieSecure:       getEnv("COOKIE_SECURE", "false") == "true",
		BrevoAPIKey:        getEnv("BREVO_API_KEY", ""),
		BrevoSenderEmail:   getEnv("BREVO_SENDER_EMAIL", ""),
		BrevoSenderName:    getEnv("BREVO_SENDER_NAME", "Same Day Ramps"),
		BrevoSandbox:       getEnv("BREVO_SANDBOX", "false") == "true",
		NotifyEmail:        getEnv("NOTIFY_EMAIL", ""),
		MapsAPIKey:         getEnv("MAPS_API_KEY", ""),
		Timezone:           loc,
	}

	return cfg, nil
}

func mongoDBFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	db := strings.Trim(u.Path, "/")
	if db == "" {
		return ""
	}
	// mongodb URIs sometimes include extra path segments; we only support the first one as db name.
	if idx := strings.Index(db, "/"); idx >= 0 {
		db = db[:idx]
	}
	return db
}
