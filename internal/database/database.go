package database

import (
	"fmt"
	"time"

	"github.com/gatherly/backend/internal/config"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the database with a bounded retry-after-delay loop, then
// runs migrations. Request handling never retries; this is the only retry
// in the system.
func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	var db *gorm.DB
	var err error
	attempts := cfg.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		logger.Warn("db_connect_retry", map[string]interface{}{
			"attempt": attempt,
			"of":      attempts,
			"error":   err.Error(),
		})
		if attempt < attempts {
			time.Sleep(cfg.RetryDelay)
		}
	}
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate is shared with the test harness, which runs it against an
// in-memory sqlite database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Event{},
		&models.DiscussionThread{},
		&models.Message{},
		&models.PhotoAlbum{},
		&models.Photo{},
		&models.PhotoComment{},
		&models.Poll{},
		&models.PollQuestion{},
		&models.PollResponse{},
		&models.TicketType{},
		&models.Ticket{},
		&models.ShoppingItem{},
		&models.Carpool{},
	)
}
