package database

import (
	"log"

	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/config"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to the database: %v", err)
	}

	// ScanEvent migration: confirmed column gets a partial index so the
	// confirmation batches do not scan the whole table. Runs before
	// AutoMigrate so existing rows are preserved.
	if DB.Migrator().HasTable(&models.ScanEvent{}) {
		if !DB.Migrator().HasColumn(&models.ScanEvent{}, "confirmed") {
			log.Println("Adding scan_events.confirmed column...")
			if err := DB.Exec("ALTER TABLE scan_events ADD COLUMN confirmed BOOLEAN NOT NULL DEFAULT FALSE").Error; err != nil {
				log.Printf("Error adding confirmed column (may already exist): %v", err)
			}
		}
		DB.Exec("CREATE INDEX IF NOT EXISTS idx_scan_events_unconfirmed ON scan_events(warehouse_request_id) WHERE confirmed = FALSE")
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Area{},
		&models.Location{},
		&models.Inventory{},
		&models.WarehouseRequest{},
		&models.RequestLine{},
		&models.ScanEvent{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate error: %v", err)
	}

	log.Println("Database connection established. Migration complete.")
}
