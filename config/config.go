package config

import (
	"fmt"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Getenv reads an environment variable with a fallback.
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// CheckinSecret is the HMAC key for check-in tokens. It must be identical
// across redeployments so issued QR codes stay valid.
func CheckinSecret() string {
	return Getenv("CHECKIN_SECRET", "reap-secret-key-change-in-production")
}

// BaseURL is the externally reachable URL embedded in check-in QR codes.
func BaseURL() string {
	return Getenv("BASE_URL", "http://localhost:8083")
}

// OrderServiceURL is the base URL of the kitchen Order service.
func OrderServiceURL() string {
	return Getenv("ORDER_SERVICE_URL", "http://localhost:8081/api")
}

// InitDB opens the MySQL connection described by the DB_* environment
// variables.
func InitDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		Getenv("DB_USER", "root"),
		Getenv("DB_PASSWORD", ""),
		Getenv("DB_HOST", "127.0.0.1"),
		Getenv("DB_PORT", "3306"),
		Getenv("DB_NAME", "reservations"),
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
