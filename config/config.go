package config

import (
	"os"

	"local-services-api/models"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// JWTSecret signs all tokens — read from env or fallback for dev
var JWTSecret = []byte(getEnv("JWT_SECRET", "local-services-dev-secret"))

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadEnv reads a .env file when present. Missing files are fine; real
// deployments set the environment directly.
func LoadEnv() {
	if err := godotenv.Load(); err == nil {
		JWTSecret = []byte(getEnv("JWT_SECRET", "local-services-dev-secret"))
	}
}

func InitDB() {
	var err error
	DB, err = gorm.Open(sqlite.Open(getEnv("DB_PATH", "local_services.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		Logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := Migrate(DB); err != nil {
		Logger.Fatal("failed to migrate database", zap.Error(err))
	}

	Logger.Info("database connected and migrated")
}

// Migrate applies the schema for every model; shared with the test setup.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.Business{},
		&models.Review{},
	)
}
