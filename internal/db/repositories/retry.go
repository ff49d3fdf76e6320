package repositories

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/gorm"
)

const (
	readRetryMaxElapsed = 5 * time.Second
	defaultPageSize     = 100
	maxPageSize         = 500
)

func newReadBackoff() backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxElapsedTime = readRetryMaxElapsed
	return bo
}

// IsTransient reports whether err is a connection-level failure worth
// retrying. Query errors and missing rows are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	for _, marker := range []string{
		"bad connection",
		"broken pipe",
		"connection reset",
		"connection refused",
		"i/o timeout",
		"too many connections",
		"the database system is starting up",
		"database is locked",
	} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}

// withReadRetry runs an idempotent read with bounded exponential backoff.
// Writes must never go through here.
func withReadRetry(ctx context.Context, op func() error) error {
	return backoff.Retry(func() error {
		err := op()
		if err != nil && IsTransient(err) {
			return err // Retryable - backoff will retry
		}
		if err != nil {
			return backoff.Permanent(err) // Non-retryable - stop immediately
		}
		return nil
	}, backoff.WithContext(newReadBackoff(), ctx))
}

// IsDuplicate reports whether err is a unique-constraint violation.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "unique constraint") || strings.Contains(errStr, "duplicate key")
}

func pageSize(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
