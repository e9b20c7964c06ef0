package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"leadtrack/models"
)

type RedisConfig struct {
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

type MongoConfig struct {
	URI        string `json:"uri"`
	Database   string `json:"database"`
	Collection string `json:"collection"`
}

type Config struct {
	Environment     string        `json:"environment"`
	DBHost          string        `json:"db_host"`
	DBPort          string        `json:"db_port"`
	DBUser          string        `json:"db_user"`
	DBPassword      string        `json:"-"`
	DBName          string        `json:"db_name"`
	DBSSLMode       string        `json:"db_ssl_mode"`
	DBMaxIdleConns  int           `json:"db_max_idle_conns"`
	DBMaxOpenConns  int           `json:"db_max_open_conns"`
	Mongo           MongoConfig   `json:"mongo"`
	Redis           RedisConfig   `json:"redis"`
	CacheTTL        time.Duration `json:"cache_ttl"`
	StoreTimeout    time.Duration `json:"store_timeout"`
	RefreshInterval time.Duration `json:"refresh_interval"`
}

// Load reads configuration from the environment. A .env file is used when
// present but is not required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", ""),
		DBName:          getEnv("DB_NAME", "leadtrack"),
		DBSSLMode:       getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns:  getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns:  getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		Mongo: MongoConfig{
			URI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:   getEnv("MONGO_DATABASE", "leadtrack"),
			Collection: getEnv("INTERACTION_COLLECTION", "interactions"),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		CacheTTL:        getEnvAsDuration("CACHE_TTL", time.Hour),
		StoreTimeout:    getEnvAsDuration("STORE_TIMEOUT", 5*time.Second),
		RefreshInterval: getEnvAsDuration("REFRESH_INTERVAL", 15*time.Minute),
	}

	if cfg.DBPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	return cfg, nil
}

// ConnectPostgres opens the relational directory database, tunes the pool and
// migrates the directory models.
func ConnectPostgres(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get DB instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := migrateDB(db); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return db, nil
}

// ConnectMongo connects to the interaction store and returns the collection
// holding interaction documents.
func ConnectMongo(ctx context.Context, cfg *Config) (*mongo.Client, *mongo.Collection, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("mongo ping failed: %w", err)
	}
	coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
	return client, coll, nil
}

// NewRedisClient builds the cache client. Callers decide whether a failed
// connection matters; the cache layer tolerates an unreachable server.
func NewRedisClient(cfg *Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func migrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Lead{},
		&models.PointOfContact{},
		&models.Call{},
	)
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallback
	}
	return value
}
