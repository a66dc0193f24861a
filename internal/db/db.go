package db

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/littlegems/admissions/internal/models"
)

var conn *gorm.DB

// Init opens admissions.db in the working directory and migrates the schema.
func Init() error {
	return InitPath("admissions.db")
}

// InitPath opens the database at the given path. Tests point this at a temp dir.
func InitPath(path string) error {
	var err error
	conn, err = gorm.Open(sqlite.Open(path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"), &gorm.Config{})
	if err != nil {
		return err
	}

	// SQLite works best with a single writer; cap the pool accordingly.
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := conn.AutoMigrate(
		&models.User{},
		&models.Application{},
		&models.ApplicationChild{},
	); err != nil {
		log.Fatalf("auto-migrate failed: %v", err)
	}

	// Composite indexes that GORM doesn't auto-create from struct tags.
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_app_user_status ON applications(user_id, status)")
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_app_child_app   ON application_children(application_id)")

	log.Println("database ready (sqlite)")
	return nil
}

func Conn() *gorm.DB {
	return conn
}
