package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is read once from the environment at startup.
type Config struct {
	AppEnv string
	Port   string

	DBDriver   string // sqlite or postgres
	DBPath     string
	PGHost     string
	PGPort     string
	PGUser     string
	PGDB       string
	PGPassword string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	NoFlyZoneFile string

	SimTick           time.Duration
	SimTimeMultiplier float64
	SessionTTL        time.Duration

	LogFile string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads the environment and applies defaults.
func Load() Config {
	return Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),

		DBDriver:   getEnv("DB_DRIVER", "sqlite"),
		DBPath:     getEnv("DB_PATH", "uavops.db"),
		PGHost:     os.Getenv("PG_HOST"),
		PGPort:     getEnv("PG_PORT", "5432"),
		PGUser:     os.Getenv("PG_USER"),
		PGDB:       os.Getenv("PG_DB"),
		PGPassword: os.Getenv("PG_PASSWORD"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		NoFlyZoneFile: os.Getenv("NFZ_GEOJSON"),

		SimTick:           time.Duration(getInt("SIM_TICK_MS", 50)) * time.Millisecond,
		SimTimeMultiplier: getFloat("SIM_TIME_MULTIPLIER", 1),
		SessionTTL:        time.Duration(getInt("SESSION_TTL_MIN", 30)) * time.Minute,

		LogFile: os.Getenv("LOG_FILE"),

		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 40),
	}
}

// PostgresDSN builds the connection string used by both GORM and sqlx.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDB)
}

// RedisEnabled is true when REDIS_HOST is set.
func (c Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

func (c Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}
