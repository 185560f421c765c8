package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string
	LogJSON  bool
	LogFile  string

	AuthRPS   float64
	AuthBurst int

	MySQLHost   string
	MySQLPort   string
	MySQLDB     string
	MySQLUser   string
	MySQLPass   string
	AutoMigrate bool

	RedisAddr string
	RedisDB   int

	IdempTTLSecs     int
	RateCacheTTLSecs int

	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int

	UploadDir      string
	UploadMaxBytes int64
	BlobTimeoutMS  int

	KafkaBrokers    []string
	NotifyTopic     string
	NotifyTimeoutMS int

	SeedAdminUsername string
	SeedAdminPassword string
	SeedAdminEmail    string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getfloat(k string, d float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return d
}

func getbool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

// Load reads the environment, after an optional .env file in the working
// directory. Variables already set in the environment win over .env.
func Load() *Config {
	_ = godotenv.Load()

	c := &Config{
		AppPort:  getenv("APP_PORT", "8080"),
		AppEnv:   getenv("APP_ENV", "development"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		AuthRPS:   getfloat("AUTH_RATE_LIMIT_RPS", 5),
		AuthBurst: getint("AUTH_RATE_LIMIT_BURST", 10),

		MySQLHost:   getenv("MYSQL_HOST", "mysql"),
		MySQLPort:   getenv("MYSQL_PORT", "3306"),
		MySQLDB:     getenv("MYSQL_DB", "bankloan"),
		MySQLUser:   getenv("MYSQL_USER", "bankloan"),
		MySQLPass:   getenv("MYSQL_PASS", "bankloan"),
		AutoMigrate: getbool("DB_AUTO_MIGRATE", true),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getint("REDIS_DB", 0),
		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),
		// 0 disables the interest rate cache
		RateCacheTTLSecs: getint("RATE_CACHE_TTL_SECONDS", 60),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTIssuer:     getenv("JWT_ISSUER", "bank-loan-service"),
		JWTTTLMinutes: getint("JWT_TTL_MINUTES", 60),

		UploadDir:      getenv("UPLOAD_DIR", "uploads"),
		UploadMaxBytes: int64(getint("UPLOAD_MAX_BYTES", 10<<20)),
		BlobTimeoutMS:  getint("BLOB_TIMEOUT_MS", 10000),

		NotifyTopic:     getenv("NOTIFY_TOPIC", "loan-notifications"),
		NotifyTimeoutMS: getint("NOTIFY_TIMEOUT_MS", 3000),

		SeedAdminUsername: os.Getenv("SEED_ADMIN_USERNAME"),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
		SeedAdminEmail:    getenv("SEED_ADMIN_EMAIL", "admin@example.com"),
	}
	c.LogJSON = getbool("LOG_JSON", c.AppEnv == "production")
	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			c.KafkaBrokers = append(c.KafkaBrokers, b)
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	if c.UploadMaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	if (c.SeedAdminUsername == "") != (c.SeedAdminPassword == "") {
		return errors.New("SEED_ADMIN_USERNAME and SEED_ADMIN_PASSWORD must be set together")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

func (c *Config) JWTTTL() time.Duration { return time.Duration(c.JWTTTLMinutes) * time.Minute }

func (c *Config) BlobTimeout() time.Duration {
	return time.Duration(c.BlobTimeoutMS) * time.Millisecond
}

func (c *Config) NotifyTimeout() time.Duration {
	return time.Duration(c.NotifyTimeoutMS) * time.Millisecond
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}

func (c *Config) RateCacheTTL() time.Duration {
	return time.Duration(c.RateCacheTTLSecs) * time.Second
}
