// Package db provides the shared gorm connection.
package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/condovialabs/condovia/internal/config"
)

var Module = fx.Module("db",
	fx.Provide(New),
)

// New opens the database selected by the config. TranslateError makes
// unique-constraint violations surface as gorm.ErrDuplicatedKey on postgres;
// the sqlite dialector does not translate, so callers that care about
// duplicates must also match its raw constraint error.
func New(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Use(otelgorm.NewPlugin()); err != nil {
		return nil, err
	}

	log.Info("database connected", zap.String("driver", cfg.Database.Driver))
	return conn, nil
}
