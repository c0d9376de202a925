package middleware

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

var (
	tenantPattern     = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	analysisIDPattern = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}-.+$`)
	barcodePattern    = regexp.MustCompile(`^[0-9]{8,14}$`)
)

// ValidateCondition checks the condition grade against the allowed set
func ValidateCondition(condition string) error {
	allowed := map[string]bool{
		"new":      true,
		"like_new": true,
		"good":     true,
		"fair":     true,
		"poor":     true,
	}

	if !allowed[strings.ToLower(condition)] {
		return fmt.Errorf("invalid condition: %s (allowed: new, like_new, good, fair, poor)", condition)
	}
	return nil
}

// ValidateImageURL validates and sanitizes photo URLs
func ValidateImageURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("image URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (allowed: http, https)", u.Scheme)
	}

	// Check for localhost/internal IPs (SSRF protection)
	host := strings.ToLower(u.Hostname())
	blocked := []string{"localhost", "127.0.0.1", "0.0.0.0", "[::]", "::1"}
	for _, b := range blocked {
		if strings.Contains(host, b) {
			return fmt.Errorf("localhost/internal IPs are not allowed")
		}
	}

	// Block private IP ranges (basic check)
	if strings.HasPrefix(host, "10.") ||
		strings.HasPrefix(host, "192.168.") ||
		strings.HasPrefix(host, "172.16.") ||
		strings.HasPrefix(host, "172.31.") {
		return fmt.Errorf("private IP ranges are not allowed")
	}

	return nil
}

// ValidateImageURLs validates every URL in an analysis request
func ValidateImageURLs(urls []string) error {
	for _, u := range urls {
		if err := ValidateImageURL(u); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBarcode validates UPC/EAN digits
func ValidateBarcode(barcode string) error {
	if barcode == "" {
		return fmt.Errorf("barcode cannot be empty")
	}
	if !barcodePattern.MatchString(barcode) {
		return fmt.Errorf("invalid barcode format (8-14 digits)")
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

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}
	if !tenantPattern.MatchString(tenant) {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateAnalysisID validates analysis ID format (uuid-kind)
func ValidateAnalysisID(id string) error {
	if id == "" {
		return fmt.Errorf("analysis ID cannot be empty")
	}
	if !analysisIDPattern.MatchString(id) {
		return fmt.Errorf("invalid analysis ID format")
	}
	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidateDays validates days parameter
func ValidateDays(days int) int {
	if days <= 0 {
		return 7 // default
	}
	if days > 365 {
		return 365 // max 1 year
	}
	return days
}
