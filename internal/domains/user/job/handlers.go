package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"badgeforge-backend/internal/domains/user"
	"badgeforge-backend/internal/infrastructure/email"
	"badgeforge-backend/internal/shared"
	"badgeforge-backend/pkg/logger"
)

// VerificationEmailHandler sends the account verification mail.
func VerificationEmailHandler(emailSvc email.EmailService, baseURL string) func(ctx context.Context, t *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var p shared.VerificationEmailPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return asynq.SkipRetry
		}

		link := fmt.Sprintf("%s/api/v1/auth/verify-email?token=%s", baseURL, p.Token)
		return emailSvc.SendVerificationEmail(ctx, email.VerificationEmailData{
			Email:      p.Email,
			VerifyLink: link,
			ExpiresIn:  "24 hours",
		})
	}
}

// CleanupExpiredTokensHandler sweeps stale verification tokens. Runs
// on a daily schedule.
func CleanupExpiredTokensHandler(repo user.Repository) func(ctx context.Context, t *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		removed, err := repo.DeleteExpiredTokens(ctx, time.Now())
		if err != nil {
			return err
		}

		logger.Info("Cleaned up expired verification tokens", map[string]interface{}{
			"removed": removed,
		})
		return nil
	}
}
