package models

import "gorm.io/gorm"

// Migrate creates or updates the table of every persisted model
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&DeviceType{},
		&Category{},
		&CategoryBrand{},
		&Product{},
		&PartRequest{},
		&Order{},
	)
}
