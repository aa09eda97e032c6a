package storage

import (
	"fmt"
	"strings"
)

// ProductImagePath composes the object key for an uploaded product image.
func ProductImagePath(category, imageID, ext string) (string, error) {
	category, err := validateSegment("category", category)
	if err != nil {
		return "", err
	}
	imageID, err = validateSegment("imageID", imageID)
	if err != nil {
		return "", err
	}
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return "", fmt.Errorf("storage: extension is required")
	}
	return fmt.Sprintf("products/%s/%s.%s", strings.ToLower(category), imageID, ext), nil
}

func validateSegment(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("storage: %s is required", name)
	}
	if strings.ContainsAny(value, "/\\") {
		return "", fmt.Errorf("storage: %s contains invalid path characters", name)
	}
	if strings.Contains(value, "..") {
		return "", fmt.Errorf("storage: %s contains invalid traversal sequence", name)
	}
	return value, nil
}
