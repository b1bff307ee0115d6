// Command seed loads the default taxonomy, brand catalog and first admin
// account into the configured database. Rerunning it only fills in what is missing.
package main

import (
	"log"

	"github.com/sparesx/sparesx-api/config"
	"github.com/sparesx/sparesx-api/logger"
	"github.com/sparesx/sparesx-api/models"
	"github.com/sparesx/sparesx-api/services"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New(logger.Config{Development: !cfg.IsProduction(), Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := config.ConnectDatabase(cfg.DatabaseURL); err != nil {
		logg.Fatalw("failed to connect to database", "error", err)
	}
	db := config.GetDB()
	if err := models.Migrate(db); err != nil {
		logg.Fatalw("failed to migrate database", "error", err)
	}

	steps := []struct {
		name string
		run  func(*gorm.DB) (services.SeedResult, error)
	}{
		{"device types", services.SeedDeviceTypes},
		{"global categories", services.SeedGlobalCategories},
		{"brands", func(db *gorm.DB) (services.SeedResult, error) {
			return services.SeedBrands(db, services.DefaultBrandCatalog)
		}},
	}
	for _, step := range steps {
		result, err := step.run(db)
		if err != nil {
			logg.Fatalw("seed step failed", "step", step.name, "error", err)
		}
		logg.Infow("seeded", "step", step.name, "created", result.Created, "skipped", result.Skipped)
	}

	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		logg.Warn("SEED_ADMIN_EMAIL or SEED_ADMIN_PASSWORD not set; skipping admin account")
		return
	}

	created, err := services.SeedAdmin(db, cfg.SeedAdminName, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	if err != nil {
		logg.Fatalw("failed to seed admin", "error", err)
	}
	logg.Infow("admin account", "email", cfg.SeedAdminEmail, "created", created)
}
