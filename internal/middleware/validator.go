package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

var (
	uuidPattern = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`)
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// ValidateUUID validates canonical lowercase UUID format
func ValidateUUID(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}

	if !uuidPattern.MatchString(strings.ToLower(id)) {
		return fmt.Errorf("invalid id format")
	}
	return nil
}

// ValidateSlug validates URL slug format
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug cannot be empty")
	}

	if len(slug) > 200 {
		return fmt.Errorf("slug too long (max 200 chars)")
	}

	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("invalid slug format (lowercase alphanumeric and dashes only)")
	}
	return nil
}

// ValidateStatus checks a blog status filter value
func ValidateStatus(status string) error {
	if status == "" {
		return nil // Optional field
	}

	allowed := map[string]bool{
		"draft":     true,
		"review":    true,
		"published": true,
		"archived":  true,
	}
	if !allowed[strings.ToLower(status)] {
		return fmt.Errorf("invalid status: %s (allowed: draft, review, published, archived)", status)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidatePageSize validates pagination page size
func ValidatePageSize(size int) int {
	if size <= 0 {
		return 10 // default
	}
	if size > 100 {
		return 100 // max page size
	}
	return size
}

// ValidatePage validates pagination page number
func ValidatePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}
