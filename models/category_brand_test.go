package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleBrand() CategoryBrand {
	return CategoryBrand{
		Category: DeviceCategoryMobile,
		Name:     "Samsung",
		Slug:     "samsung",
		Models: []BrandModel{
			{Name: "Galaxy S23", ModelNumber: "SM-S911B", ReleaseYear: 2023},
			{Name: "Galaxy A54", ModelNumber: "SM-A546E", ReleaseYear: 2023},
			{Name: "Galaxy M14"},
		},
	}
}

func TestSearchModels(t *testing.T) {
	brand := sampleBrand()

	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{"empty query returns all", "", []string{"Galaxy S23", "Galaxy A54", "Galaxy M14"}},
		{"name substring ignores case", "galaxy a", []string{"Galaxy A54"}},
		{"model number substring", "s911", []string{"Galaxy S23"}},
		{"whitespace is trimmed", "  m14 ", []string{"Galaxy M14"}},
		{"no match", "pixel", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names := []string{}
			for _, m := range brand.SearchModels(tt.query) {
				names = append(names, m.Name)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestHasAndRemoveModel(t *testing.T) {
	brand := sampleBrand()

	assert.True(t, brand.HasModel("galaxy s23"))
	assert.False(t, brand.HasModel("Galaxy S24"))

	assert.True(t, brand.RemoveModel("GALAXY S23"))
	assert.False(t, brand.HasModel("Galaxy S23"))
	assert.Len(t, brand.Models, 2)

	assert.False(t, brand.RemoveModel("Galaxy S23"))
}
