package observability

import "unicode"

const (
	defaultStringLimit = 256
	sessionPrefixLen   = 8
)

// sanitizeString drops control characters other than whitespace and caps the rune count.
func sanitizeString(value string, limit int) string {
	if limit <= 0 {
		limit = defaultStringLimit
	}

	cleaned := make([]rune, 0, len(value))
	for _, r := range value {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			continue
		}
		cleaned = append(cleaned, r)
	}
	if len(cleaned) > limit {
		cleaned = cleaned[:limit]
	}
	return string(cleaned)
}

// SanitizeRoute removes control characters and enforces length constraints on routes.
func SanitizeRoute(route string) string {
	if route == "" {
		return "/"
	}
	return sanitizeString(route, 180)
}

// SanitizeMethod removes control characters in HTTP methods.
func SanitizeMethod(method string) string {
	return sanitizeString(method, 10)
}

// MaskSessionID keeps a short prefix of a session id. The full id authenticates the shopper and
// must never reach the logs.
func MaskSessionID(id string) string {
	cleaned := []rune(sanitizeString(id, 64))
	if len(cleaned) == 0 {
		return ""
	}
	if len(cleaned) <= sessionPrefixLen {
		return "***"
	}
	return string(cleaned[:sessionPrefixLen]) + "***"
}

// SanitizeActor cleans an admin username for logging.
func SanitizeActor(name string) string {
	if name == "" {
		return ""
	}
	return sanitizeString(name, 64)
}

func sanitizeFieldValue(value any) any {
	if s, ok := value.(string); ok {
		return sanitizeString(s, defaultStringLimit)
	}
	return value
}
