package db

import (
	"fmt"

	"sabhahub/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the configured database. The sqlite driver is pure Go and is
// what tests run against; production deployments point the DSN at MySQL.
func Connect(driverName, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driverName {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driverName)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	return gdb, nil
}

// AllModels lists every persisted table in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&models.Member{},
		&models.Chairperson{},
		&models.Bill{},
		&models.ActivityLog{},
	}
}

// Migrate runs the schema-versioning step. AutoMigrate adds any missing
// columns, which is how legacy databases created before allotted_seconds /
// spoken_seconds / bill_id existed are brought forward.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}
	return nil
}

// SeedSeats makes sure every seat from 1..size exists, inserting VACANT
// sentinel rows for the ones that don't.
func SeedSeats(gdb *gorm.DB, size int) error {
	for seat := 1; seat <= size; seat++ {
		var count int64
		if err := gdb.Model(&models.Member{}).Where("seat_no = ?", seat).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := gdb.Create(models.VacantSeat(seat)).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
