package repositories

import (
	"errors"
	"fmt"
)

// ErrCartQuotaExceeded is matched by errors.Is for writes rejected because the value exceeds the storage quota.
var ErrCartQuotaExceeded = errors.New("cart storage: quota exceeded")

// CartStorageErrorCode enumerates failure reasons for cart storage operations.
type CartStorageErrorCode string

const (
	// CartStorageQuota indicates the serialized value is larger than the per-key quota.
	CartStorageQuota CartStorageErrorCode = "cart_storage_quota"
	// CartStorageUnavailable indicates the backend could not be reached.
	CartStorageUnavailable CartStorageErrorCode = "cart_storage_unavailable"
	// CartStorageInvalid indicates the caller supplied an empty namespace or key.
	CartStorageInvalid CartStorageErrorCode = "cart_storage_invalid"
)

// CartStorageError wraps cart storage failures with machine readable codes. It satisfies RepositoryError.
type CartStorageError struct {
	Op   string
	Code CartStorageErrorCode
	Key  string
	// Size and Limit are set for quota failures.
	Size  int
	Limit int
	Err   error
}

// Error implements the error interface.
func (e *CartStorageError) Error() string {
	if e == nil {
		return ""
	}
	msg := string(e.Code)
	switch {
	case e.Code == CartStorageQuota:
		msg = fmt.Sprintf("%s: %d bytes exceeds %d", e.Code, e.Size, e.Limit)
	case e.Err != nil:
		msg = fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Key, msg)
	}
	return msg
}

// Unwrap exposes the underlying error, if any.
func (e *CartStorageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches ErrCartQuotaExceeded for quota failures.
func (e *CartStorageError) Is(target error) bool {
	return e != nil && target == ErrCartQuotaExceeded && e.Code == CartStorageQuota
}

// IsNotFound is always false; absent keys load as nil payloads.
func (e *CartStorageError) IsNotFound() bool { return false }

// IsConflict is always false; writes are last-write-wins.
func (e *CartStorageError) IsConflict() bool { return false }

// IsUnavailable reports whether the backend could not be reached.
func (e *CartStorageError) IsUnavailable() bool {
	return e != nil && e.Code == CartStorageUnavailable
}

// NewCartQuotaError reports a payload of size bytes rejected against limit.
func NewCartQuotaError(op, key string, size, limit int) *CartStorageError {
	return &CartStorageError{Op: op, Code: CartStorageQuota, Key: key, Size: size, Limit: limit}
}

// NewCartStorageError wraps err with code.
func NewCartStorageError(op, key string, code CartStorageErrorCode, err error) *CartStorageError {
	return &CartStorageError{Op: op, Code: code, Key: key, Err: err}
}
