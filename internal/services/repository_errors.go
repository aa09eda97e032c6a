package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ramitaha13/KamelStore/internal/repositories"
)

// repoErrorMapping names the sentinels a service reports for each repository failure class.
type repoErrorMapping struct {
	notFound    error
	conflict    error
	invalid     error
	unavailable error
}

// translate converts repository failures into the service's sentinel errors. Context errors pass
// through so handlers can tell timeouts from outages.
func (m repoErrorMapping) translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound() && m.notFound != nil:
			return fmt.Errorf("%w: %v", m.notFound, err)
		case repoErr.IsConflict() && m.conflict != nil:
			return fmt.Errorf("%w: %v", m.conflict, err)
		case isInvalidRepoError(err) && m.invalid != nil:
			return fmt.Errorf("%w: %v", m.invalid, err)
		}
	}
	return fmt.Errorf("%w: %v", m.unavailable, err)
}

func isInvalidRepoError(err error) bool {
	var invalid interface{ IsInvalid() bool }
	return errors.As(err, &invalid) && invalid.IsInvalid()
}
