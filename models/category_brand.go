package models

import (
	"strings"
	"time"
)

// BrandModel is a device model embedded in its CategoryBrand
type BrandModel struct {
	Name        string `json:"name" binding:"required,notblank"`
	ModelNumber string `json:"modelNumber,omitempty"`
	ReleaseYear int    `json:"releaseYear,omitempty" binding:"omitempty,gte=1990,lte=2100"`
}

// CategoryBrand is a brand and its models within one device category
type CategoryBrand struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Category  string       `gorm:"not null;uniqueIndex:idx_category_brand_slug" json:"category"`
	Name      string       `gorm:"not null" json:"name"`
	Slug      string       `gorm:"not null;uniqueIndex:idx_category_brand_slug" json:"slug"`
	Logo      *string      `json:"logo,omitempty"`
	Models    []BrandModel `gorm:"serializer:json;type:text" json:"models"`
	IsActive  bool         `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// TableName specifies the table name for the CategoryBrand model
func (CategoryBrand) TableName() string {
	return "category_brands"
}

// SearchModels returns the models whose name or model number contains query,
// case-insensitively. An empty query returns every model.
func (b *CategoryBrand) SearchModels(query string) []BrandModel {
	query = strings.ToLower(strings.TrimSpace(query))
	matches := make([]BrandModel, 0, len(b.Models))
	for _, m := range b.Models {
		if query == "" ||
			strings.Contains(strings.ToLower(m.Name), query) ||
			strings.Contains(strings.ToLower(m.ModelNumber), query) {
			matches = append(matches, m)
		}
	}
	return matches
}

// HasModel reports whether a model with the given name exists, ignoring case
func (b *CategoryBrand) HasModel(name string) bool {
	for _, m := range b.Models {
		if strings.EqualFold(m.Name, name) {
			return true
		}
	}
	return false
}

// RemoveModel drops the model with the given name and reports whether one was removed
func (b *CategoryBrand) RemoveModel(name string) bool {
	for i, m := range b.Models {
		if strings.EqualFold(m.Name, name) {
			b.Models = append(b.Models[:i], b.Models[i+1:]...)
			return true
		}
	}
	return false
}
