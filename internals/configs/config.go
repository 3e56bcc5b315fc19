package configs

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"schoolku_web/internals/helpers/logger"
)

// AppConfig menampung seluruh konfigurasi yang dibaca sekali saat bootstrap.
type AppConfig struct {
	Port   string
	AppEnv string

	// Backend API lembaga (sumber data tagihan & langganan)
	BackendBaseURL string
	BackendTimeout time.Duration

	// Midtrans Snap (sisi browser: client key + environment)
	MidtransClientKey string
	MidtransUseProd   bool

	CorsAllowOrigins []string
	PageSessionTTL   time.Duration

	// Redis opsional: storage rate limiter lintas instance
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int
}

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			logger.L().Warn("⚠️ Tidak menemukan .env file, menggunakan ENV dari sistem")
		} else {
			logger.L().Info("✅ .env file berhasil dimuat!")
		}
	} else {
		logger.L().Info("🚀 Running in Railway, menggunakan ENV dari sistem")
	}
}

// Load membaca ENV menjadi AppConfig. Nilai yang tidak valid jatuh ke default.
func Load() AppConfig {
	cfg := AppConfig{
		Port:              GetEnv("PORT", "3000"),
		AppEnv:            GetEnv("APP_ENV", "development"),
		BackendBaseURL:    strings.TrimRight(GetEnv("BACKEND_API_URL", "http://localhost:8080/api/a"), "/"),
		BackendTimeout:    GetDuration("BACKEND_TIMEOUT", 10*time.Second),
		MidtransClientKey: GetEnv("MIDTRANS_CLIENT_KEY"),
		MidtransUseProd:   GetBool("MIDTRANS_USE_PROD", false),
		CorsAllowOrigins:  GetList("CORS_ALLOW_ORIGINS", []string{"http://localhost:5173"}),
		PageSessionTTL:    GetDuration("PAGE_SESSION_TTL", 30*time.Minute),
		RedisHost:         strings.TrimSpace(GetEnv("REDIS_HOST")),
		RedisPort:         GetInt("REDIS_PORT", 6379),
		RedisPassword:     GetEnv("REDIS_PASSWORD"),
		RedisDB:           GetInt("REDIS_DB", 0),
	}

	if cfg.MidtransClientKey == "" {
		logger.L().Warn("❌ MIDTRANS_CLIENT_KEY belum diset!")
	} else {
		logger.L().Info("✅ MIDTRANS_CLIENT_KEY berhasil dimuat.", zap.Bool("production", cfg.MidtransUseProd))
	}
	return cfg
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetBool(key string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func GetInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func GetDuration(key string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

// GetList membaca daftar dipisah koma, elemen kosong dibuang.
func GetList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	out := make([]string, 0, 4)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
