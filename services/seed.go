package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sparesx/sparesx-api/models"
	"github.com/sparesx/sparesx-api/utils"
	"gorm.io/gorm"
)

// SeedResult counts rows created by a seed step
type SeedResult struct {
	Created int
	Skipped int
}

// SeedAdmin creates an admin account unless the email is already registered.
// It reports whether a row was created.
func SeedAdmin(db *gorm.DB, name, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, fmt.Errorf("admin email and password are required")
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return false, err
	}

	admin := models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}
	return true, nil
}

var defaultDeviceTypes = []models.DeviceType{
	{Name: "Mobile Phone", Emoji: "📱", Slug: "mobile", Description: "Smartphones and feature phones", Order: 1},
	{Name: "Laptop", Emoji: "💻", Slug: "laptop", Description: "Notebooks and ultrabooks", Order: 2},
	{Name: "Desktop", Emoji: "🖥️", Slug: "desktop", Description: "Desktop towers and all-in-ones", Order: 3},
}

// SeedDeviceTypes inserts the default device types that are missing
func SeedDeviceTypes(db *gorm.DB) (SeedResult, error) {
	var result SeedResult
	for _, dt := range defaultDeviceTypes {
		row := dt
		tx := db.Where(models.DeviceType{Slug: row.Slug}).FirstOrCreate(&row)
		if tx.Error != nil {
			return result, fmt.Errorf("failed to seed device type %s: %w", row.Slug, tx.Error)
		}
		if tx.RowsAffected > 0 {
			result.Created++
		} else {
			result.Skipped++
		}
	}
	return result, nil
}

var defaultGlobalCategories = []string{
	"Display", "Battery", "Charging Port", "Camera", "Speaker", "Motherboard", "Other",
}

// SeedGlobalCategories inserts the default categories shown under every device type
func SeedGlobalCategories(db *gorm.DB) (SeedResult, error) {
	var result SeedResult
	for i, name := range defaultGlobalCategories {
		row := models.Category{Name: name, Slug: utils.Slugify(name), IsActive: true, Order: i + 1}
		tx := db.Where(models.Category{Slug: row.Slug}).FirstOrCreate(&row)
		if tx.Error != nil {
			return result, fmt.Errorf("failed to seed category %s: %w", row.Slug, tx.Error)
		}
		if tx.RowsAffected > 0 {
			result.Created++
		} else {
			result.Skipped++
		}
	}
	return result, nil
}

// DefaultBrandCatalog is the initial brand and model list per device category
var DefaultBrandCatalog = map[string][]models.CategoryBrand{
	models.DeviceCategoryMobile: {
		{Name: "Samsung", Models: []models.BrandModel{
			{Name: "Galaxy S23", ModelNumber: "SM-S911B", ReleaseYear: 2023},
			{Name: "Galaxy A54", ModelNumber: "SM-A546E", ReleaseYear: 2023},
			{Name: "Galaxy M34", ModelNumber: "SM-M346B", ReleaseYear: 2023},
		}},
		{Name: "Apple", Models: []models.BrandModel{
			{Name: "iPhone 15", ModelNumber: "A3090", ReleaseYear: 2023},
			{Name: "iPhone 14", ModelNumber: "A2882", ReleaseYear: 2022},
			{Name: "iPhone 13", ModelNumber: "A2633", ReleaseYear: 2021},
		}},
		{Name: "Xiaomi", Models: []models.BrandModel{
			{Name: "Redmi Note 13", ReleaseYear: 2024},
			{Name: "Redmi 12", ReleaseYear: 2023},
		}},
		{Name: "OnePlus", Models: []models.BrandModel{
			{Name: "OnePlus 12", ModelNumber: "CPH2573", ReleaseYear: 2024},
			{Name: "Nord CE 3", ModelNumber: "CPH2569", ReleaseYear: 2023},
		}},
		{Name: "Vivo", Models: []models.BrandModel{{Name: "V29", ReleaseYear: 2023}, {Name: "Y56", ReleaseYear: 2023}}},
		{Name: "Oppo", Models: []models.BrandModel{{Name: "Reno 10", ReleaseYear: 2023}, {Name: "A78", ReleaseYear: 2023}}},
		{Name: "Realme", Models: []models.BrandModel{{Name: "Narzo 60", ReleaseYear: 2023}, {Name: "11 Pro", ReleaseYear: 2023}}},
	},
	models.DeviceCategoryLaptop: {
		{Name: "Dell", Models: []models.BrandModel{{Name: "Inspiron 15 3520"}, {Name: "Latitude 5420"}, {Name: "XPS 13 9315"}}},
		{Name: "HP", Models: []models.BrandModel{{Name: "Pavilion 15"}, {Name: "EliteBook 840 G8"}, {Name: "Victus 16"}}},
		{Name: "Lenovo", Models: []models.BrandModel{{Name: "IdeaPad Slim 3"}, {Name: "ThinkPad E14"}}},
		{Name: "Apple", Models: []models.BrandModel{{Name: "MacBook Air M2", ModelNumber: "A2681"}, {Name: "MacBook Pro 14", ModelNumber: "A2442"}}},
	},
	models.DeviceCategoryDesktop: {
		{Name: "Dell", Models: []models.BrandModel{{Name: "OptiPlex 7010"}, {Name: "Vostro 3020"}}},
		{Name: "HP", Models: []models.BrandModel{{Name: "ProDesk 400 G9"}, {Name: "All-in-One 24"}}},
		{Name: "Lenovo", Models: []models.BrandModel{{Name: "ThinkCentre M70s"}, {Name: "IdeaCentre AIO 3"}}},
	},
}

// SeedBrands inserts the brands of catalog that are missing. Existing
// (category, slug) pairs are left untouched.
func SeedBrands(db *gorm.DB, catalog map[string][]models.CategoryBrand) (SeedResult, error) {
	var result SeedResult
	for category, brands := range catalog {
		for _, brand := range brands {
			row := brand
			row.Category = category
			row.Slug = utils.Slugify(brand.Name)
			row.IsActive = true
			tx := db.Where(models.CategoryBrand{Category: category, Slug: row.Slug}).FirstOrCreate(&row)
			if tx.Error != nil {
				return result, fmt.Errorf("failed to seed brand %s/%s: %w", category, row.Slug, tx.Error)
			}
			if tx.RowsAffected > 0 {
				result.Created++
			} else {
				result.Skipped++
			}
		}
	}
	return result, nil
}
