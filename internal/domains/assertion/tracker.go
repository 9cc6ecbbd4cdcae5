package assertion

import (
	"context"

	"badgeforge-backend/pkg/logger"
)

// AwardTracker is notified after an assertion is revoked. External
// gradebook-style integrations implement it; when none is configured
// the no-op tracker is wired in. Tracker failures never fail the
// revocation itself.
type AwardTracker interface {
	AssertionRevoked(ctx context.Context, assertionSlug string) error
}

type nopAwardTracker struct{}

func (nopAwardTracker) AssertionRevoked(ctx context.Context, assertionSlug string) error {
	return nil
}

// NopAwardTracker returns the default do-nothing tracker.
func NopAwardTracker() AwardTracker {
	return nopAwardTracker{}
}

type loggingAwardTracker struct{}

func (loggingAwardTracker) AssertionRevoked(ctx context.Context, assertionSlug string) error {
	logger.Info("Award tracker notified of revocation", map[string]interface{}{
		"assertion": assertionSlug,
	})
	return nil
}

// NewLoggingAwardTracker records revocations in the application log.
// Stands in for a real external integration when one is enabled but
// not yet pointed anywhere.
func NewLoggingAwardTracker() AwardTracker {
	return loggingAwardTracker{}
}
