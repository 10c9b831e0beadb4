package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"parcelhub/internal/auth"
	"parcelhub/internal/db"
	"parcelhub/internal/domain/storage"
	"parcelhub/internal/ratelimiter"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		fmt.Printf("Invalid %s, defaulting to %d\n", key, fallback)
		return fallback
	}
	return parsed
}

func getBool(key string, fallback bool) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		fmt.Printf("Invalid %s, defaulting to %t\n", key, fallback)
		return fallback
	}
	return parsed
}

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	return ratelimiter.Config{
		RequestsPerTimeFrame: getInt("RATELIMITER_REQUESTS_COUNT", 200),
		TimeFrame:            5 * time.Second,
		Enabled:              getBool("RATE_LIMITER_ENABLED", false),
	}
}

func loadConfig() config {
	return config{
		addr:          getString("ADDR", ":8080"),
		env:           getString("ENV", "development"),
		apiURL:        getString("EXTERNAL_URL", "localhost:8080"),
		storageDriver: getString("STORAGE_DRIVER", "postgres"),
		logLevel:      getString("LOG_LEVEL", "info"),
		db: dbConfig{
			addr:         os.Getenv("DB_ADDR"),
			maxOpenConns: getInt("DB_MAX_OPEN_CONNS", 30),
			maxIdleTime:  getString("DB_MAX_IDLE_TIME", "15m"),
			autoMigrate:  getBool("DB_AUTO_MIGRATE", true),
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				secret: os.Getenv("AUTH_TOKEN_SECRET"),
				exp:    auth.DefaultTokenTTL,
				iss:    getString("AUTH_TOKEN_ISS", "parcelhub"),
				aud:    getString("AUTH_TOKEN_AUD", "parcelhub"),
			},
		},
		rateLimiter: LoadRateLimiterConfig(),
	}
}

// NewLogger creates a colored console logger at the given level.
func NewLogger(level string) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), lvl)

	return zap.New(core).Sugar(), nil
}

var version = "0.1.0"

//	@title			ParcelHub Access API
//	@description	Roles, organization membership, warehouse scope and permission resolution for ParcelHub.

//	@contact.name	API Support
//	@contact.url	http://www.swagger.io/support
//	@contact.email	support@swagger.io

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@BasePath					/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := loadConfig()

	logger, err := NewLogger(cfg.logLevel)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer logger.Sync()

	if cfg.auth.token.secret == "" {
		logger.Fatal("AUTH_TOKEN_SECRET is required")
	}

	var store *storage.Container
	switch cfg.storageDriver {
	case "memory":
		store = storage.NewMemoryContainer(logger)
		logger.Warn("using in-memory storage, data is lost on restart")
	case "postgres":
		pool, err := db.New(cfg.db.addr, int32(cfg.db.maxOpenConns), cfg.db.maxIdleTime)
		if err != nil {
			logger.Fatal(err)
		}
		defer pool.Close()
		logger.Info("database connection pool established")

		if cfg.db.autoMigrate {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			applied, err := db.Migrate(ctx, pool)
			cancel()
			if err != nil {
				logger.Fatal(err)
			}
			logger.Infow("migrations applied", "count", applied)
		}

		expvar.Publish("database", expvar.Func(func() any {
			s := pool.Stat()
			return map[string]any{
				"total_conns":    s.TotalConns(),
				"idle_conns":     s.IdleConns(),
				"acquired_conns": s.AcquiredConns(),
				"max_conns":      s.MaxConns(),
			}
		}))

		store = storage.NewContainer(pool, logger)
	default:
		logger.Fatalf("unknown STORAGE_DRIVER %q", cfg.storageDriver)
	}

	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.aud,
		cfg.auth.token.iss,
		cfg.auth.token.exp,
	)

	app := &application{
		config:        cfg,
		logger:        logger,
		store:         store,
		authenticator: jwtAuthenticator,
		rateLimiter:   rateLimiter,
	}

	//Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
