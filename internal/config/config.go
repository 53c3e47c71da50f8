package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port          string
	Env           string
	MongoURI      string
	MongoDB       string
	JWTSecret     string
	TokenTTL      time.Duration
	CORSOrigins   []string
	CloudinaryURL string
	UploadDir     string
	StoreDriver   string
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:          get("PORT", "5000"),
		Env:           get("APP_ENV", EnvDevelopment),
		MongoURI:      get("MONGO_URI", getenv("MONGO_URL")),
		MongoDB:       get("MONGO_DB", "collect_and_cruise"),
		JWTSecret:     getenv("JWT_SECRET"),
		CloudinaryURL: getenv("CLOUDINARY_URL"),
		UploadDir:     get("UPLOAD_DIR", "uploads"),
		StoreDriver:   get("STORE_DRIVER", DriverMongo),
	}

	ttl, err := time.ParseDuration(get("TOKEN_TTL", "720h"))
	if err != nil {
		return Config{}, errors.New("TOKEN_TTL must be a duration like 720h")
	}
	cfg.TokenTTL = ttl

	for _, o := range strings.Split(get("CORS_ORIGIN", "http://localhost:5173"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	switch cfg.StoreDriver {
	case DriverMongo:
		if cfg.MongoURI == "" {
			return Config{}, errors.New("MONGO_URI environment variable not set")
		}
	case DriverMemory:
	default:
		return Config{}, errors.New("STORE_DRIVER must be mongo or memory")
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return Config{}, errors.New("JWT_SECRET environment variable not set")
		}
		log.Println("JWT_SECRET not set, using an insecure development secret")
		cfg.JWTSecret = "dev-secret"
	}
	return cfg, nil
}

func (c Config) IsProduction() bool { return c.Env == EnvProduction }
