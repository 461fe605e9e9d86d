package migration

import (
	"github.com/harborworks/chandlery/internal/config"
	"github.com/harborworks/chandlery/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// The embedded migrations target postgres; other dialects (sqlite
		// in tests) create their schema elsewhere.
		if conn.Dialector.Name() == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		}

		if cfg.SeedDefaults {
			return seed.EnsureDefaults(conn)
		}
		return nil
	}),
)
