package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/doctors-portal/api/internal/config"
	"github.com/doctors-portal/api/internal/domain"
	"github.com/doctors-portal/api/internal/domain/booking"
	"github.com/doctors-portal/api/internal/domain/doctor"
	"github.com/doctors-portal/api/internal/domain/treatment"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:      gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt: true,
		// Duplicate-key violations surface as gorm.ErrDuplicatedKey so the
		// admission path can treat the losing insert as a duplicate intent.
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: false,
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	schemas := []string{"clinical", "auth", "audit"} // logical namespace
	for _, schema := range schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", schema, err)
		}
	}

	models := []any{
		&domain.User{},
		&domain.AuditLog{},
		&treatment.Treatment{},
		&booking.Booking{},
		&doctor.Doctor{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []struct {
		name  string
		query string
	}{
		// One booking per patient per treatment per day. Enforced here so a
		// duplicate-check/insert race resolves at the storage layer.
		{
			name:  "uq_bookings_intent",
			query: `CREATE UNIQUE INDEX IF NOT EXISTS uq_bookings_intent ON clinical.bookings (treatment, date, patient)`,
		},
		{
			name:  "idx_bookings_date",
			query: `CREATE INDEX IF NOT EXISTS idx_bookings_date ON clinical.bookings (date, treatment)`,
		},
		{
			name:  "idx_bookings_patient",
			query: `CREATE INDEX IF NOT EXISTS idx_bookings_patient ON clinical.bookings (patient, created_at DESC)`,
		},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}

	return nil
}

// SeedTreatments loads the fixed slot catalog on first boot. The catalog is
// the administrative source of truth; it is never mutated by request handling.
func SeedTreatments(ctx context.Context, repo treatment.Repository, log *zap.Logger) error {
	slots := []string{
		"08.00 AM - 08.30 AM",
		"08.30 AM - 09.00 AM",
		"09.00 AM - 09.30 AM",
		"09.30 AM - 10.00 AM",
		"10.00 AM - 10.30 AM",
		"10.30 AM - 11.00 AM",
		"11.00 AM - 11.30 AM",
		"11.30 AM - 12.00 PM",
		"01.00 PM - 01.30 PM",
		"01.30 PM - 02.00 PM",
		"02.00 PM - 02.30 PM",
		"02.30 PM - 03.00 PM",
	}

	catalog := []*treatment.Treatment{
		{Name: "Teeth Orthodontics", Price: 8000, Slots: slots},
		{Name: "Cosmetic Dentistry", Price: 9000, Slots: slots},
		{Name: "Teeth Cleaning", Price: 4000, Slots: slots},
		{Name: "Cavity Protection", Price: 5000, Slots: slots},
		{Name: "Pediatric Dental", Price: 6000, Slots: slots},
		{Name: "Oral Surgery", Price: 12000, Slots: slots},
	}

	if err := repo.Seed(ctx, catalog); err != nil {
		return fmt.Errorf("seeding treatments: %w", err)
	}

	log.Info("treatment catalog ready", zap.Int("treatments", len(catalog)))
	return nil
}
