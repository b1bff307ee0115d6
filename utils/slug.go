package utils

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
)

// Slugify turns a display name into a lower-case, URL-safe slug
func Slugify(value string) string {
	return slug.Make(strings.TrimSpace(value))
}

// DeviceScopedSlug namespaces a category slug under its device type
func DeviceScopedSlug(deviceSlug, name string) string {
	return fmt.Sprintf("%s-%s", deviceSlug, Slugify(name))
}

// UniqueSlug returns base, or base-1, base-2, ... for the first candidate
// that exists reports as unused.
func UniqueSlug(base string, exists func(candidate string) (bool, error)) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
