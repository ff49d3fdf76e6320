package services

import (
	"fmt"

	"soultrack/followup/internal/db/repositories"
	"soultrack/followup/internal/lifecycle"
)

// storeError classifies a repository failure. Connection-level errors become
// TransientStore so the caller can retry; anything else is wrapped as is.
func storeError(message string, err error) error {
	if err == nil {
		return nil
	}
	if lifecycle.KindOf(err) != "" {
		return err
	}
	if repositories.IsTransient(err) {
		return lifecycle.NewTransientStoreError(message, err)
	}
	return fmt.Errorf("%s: %w", message, err)
}
