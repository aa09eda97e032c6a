package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
)

var (
	// ErrImageTooLarge is returned when an image exceeds the configured byte limit.
	ErrImageTooLarge = errors.New("storage: image too large")
	// ErrImageType is returned for payloads that are not a supported image format.
	ErrImageType = errors.New("storage: unsupported image type")
	// ErrInvalidDataURI is returned when a data URI cannot be decoded.
	ErrInvalidDataURI = errors.New("storage: invalid data uri")
)

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ObjectWriter persists bytes to an object store.
type ObjectWriter interface {
	WriteObject(ctx context.Context, bucket, object, contentType string, data []byte) error
}

// GCSWriter writes objects to Cloud Storage.
type GCSWriter struct {
	client *gcs.Client
}

// NewGCSWriter wraps a Cloud Storage client.
func NewGCSWriter(client *gcs.Client) (*GCSWriter, error) {
	if client == nil {
		return nil, errors.New("storage: client is required")
	}
	return &GCSWriter{client: client}, nil
}

// WriteObject uploads data as a single object.
func (w *GCSWriter) WriteObject(ctx context.Context, bucket, object, contentType string, data []byte) error {
	writer := w.client.Bucket(bucket).Object(object).NewWriter(ctx)
	writer.ContentType = contentType
	writer.CacheControl = "public, max-age=86400"
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("storage: write %s: %w", object, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("storage: close %s: %w", object, err)
	}
	return nil
}

// ImageStore turns uploaded product images into the URL stored on the product. With a bucket the image
// is uploaded and its public URL returned; without one the image is inlined as a data URI.
type ImageStore struct {
	writer   ObjectWriter
	bucket   string
	maxBytes int
}

// NewImageStore builds an ImageStore. writer and bucket may be empty to store images inline.
func NewImageStore(writer ObjectWriter, bucket string, maxBytes int) *ImageStore {
	return &ImageStore{writer: writer, bucket: strings.TrimSpace(bucket), maxBytes: maxBytes}
}

// Inline reports whether images are kept as data URIs.
func (s *ImageStore) Inline() bool {
	return s == nil || s.writer == nil || s.bucket == ""
}

// Store validates data and returns the URL to persist for it.
func (s *ImageStore) Store(ctx context.Context, category, imageID string, data []byte) (string, error) {
	contentType, err := s.validate(data)
	if err != nil {
		return "", err
	}
	if s.Inline() {
		return EncodeDataURI(contentType, data), nil
	}
	object, err := ProductImagePath(category, imageID, imageExtensions[contentType])
	if err != nil {
		return "", err
	}
	if err := s.writer.WriteObject(ctx, s.bucket, object, contentType, data); err != nil {
		return "", err
	}
	return PublicURL(s.bucket, object), nil
}

// Normalize accepts either an http(s) URL or a data URI from an admin form. Data URIs are validated
// and, when a bucket is configured, uploaded.
func (s *ImageStore) Normalize(ctx context.Context, category, imageID, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if strings.HasPrefix(value, "data:") {
		_, data, err := DecodeDataURI(value)
		if err != nil {
			return "", err
		}
		return s.Store(ctx, category, imageID, data)
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return "", ErrImageType
	}
	return value, nil
}

func (s *ImageStore) validate(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrImageType
	}
	if s != nil && s.maxBytes > 0 && len(data) > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrImageTooLarge, len(data), s.maxBytes)
	}
	contentType := http.DetectContentType(data)
	if _, ok := imageExtensions[contentType]; !ok {
		return "", fmt.Errorf("%w: %s", ErrImageType, contentType)
	}
	return contentType, nil
}

// PublicURL returns the public HTTPS URL for an object.
func PublicURL(bucket, object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, object)
}

// EncodeDataURI renders data as a base64 data URI.
func EncodeDataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI parses a base64 data URI.
func DecodeDataURI(value string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(value), "data:")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	contentType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("%w: only base64 payloads are accepted", ErrInvalidDataURI)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return contentType, data, nil
}
