package storage

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Moosaa95/seqproject-backend/models"
)

var DB *gorm.DB

func connectToDB(dsn string) *gorm.DB {
	if dsn == "" {
		log.Panic("DB_CONNECTION_STRING environment variable is required")
	}

	db, dbError := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if dbError != nil {
		log.Panic("error connecting to db: " + dbError.Error())
	}

	DB = db
	return db
}

// Migrate runs AutoMigrate for every model. Shared by the server and the
// adminctl CLI so both can bring up a fresh schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Agent{},
		&models.Property{},
		&models.PropertyImage{},
		&models.Booking{},
		&models.Payment{},
		&models.ContactInquiry{},
		&models.PropertyInquiry{},
		&models.ExternalCalendar{},
		&models.BlockedDate{},
		&models.BookingDispute{},
		&models.User{},
	)
}

// InitializeDB connects and migrates, storing the handle in the package-level
// DB used by route handlers.
func InitializeDB(dsn string) *gorm.DB {
	db := connectToDB(dsn)
	if err := Migrate(db); err != nil {
		log.Panic("error running migrations: " + err.Error())
	}
	return db
}
