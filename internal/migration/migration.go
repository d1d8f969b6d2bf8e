// Package migration applies the database schema.
package migration

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	chargedomain "github.com/condovialabs/condovia/internal/charge/domain"
	"github.com/condovialabs/condovia/internal/config"
	feetemplatedomain "github.com/condovialabs/condovia/internal/feetemplate/domain"
	residentdomain "github.com/condovialabs/condovia/internal/resident/domain"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const migrationsDir = "migrations"

// Run applies the embedded SQL migrations on postgres. Sqlite (local
// development) falls back to AutoMigrate plus the raw uniqueness index, which
// the SQL dialect of the embedded files cannot express portably.
func Run(conn *gorm.DB, cfg config.Config) error {
	if cfg.Database.Driver == "postgres" {
		return runPostgres(conn)
	}
	return runSqlite(conn)
}

func runPostgres(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func runSqlite(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&residentdomain.Resident{},
		&feetemplatedomain.FeeTemplate{},
		&chargedomain.Charge{},
	); err != nil {
		return err
	}

	return conn.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_charges_template_resident_period
		 ON charges (source_template_id, resident_id, competency_period)
		 WHERE status <> 'cancelled'
		   AND source_template_id IS NOT NULL
		   AND competency_period IS NOT NULL`,
	).Error
}
