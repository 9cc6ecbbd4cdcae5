package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"badgeforge-backend/internal/domains/assertion"
	"badgeforge-backend/internal/domains/badgeclass"
	"badgeforge-backend/internal/domains/issuer"
	"badgeforge-backend/internal/infrastructure/email"
	"badgeforge-backend/internal/shared"
	"badgeforge-backend/pkg/logger"
)

// ObjectStore is the slice of blob storage the worker jobs need.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Baker embeds assertion JSON into a badge PNG.
type Baker interface {
	Bake(classImage []byte, assertionJSON []byte) ([]byte, error)
}

// BakeAssertionHandler produces the recipient-specific baked image for
// a freshly issued assertion and records its storage URL.
func BakeAssertionHandler(
	assertions assertion.Repository,
	store ObjectStore,
	baker Baker,
	baseURL string,
) func(ctx context.Context, t *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var p shared.BakeAssertionPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return asynq.SkipRetry
		}

		bi, err := assertions.GetBySlug(ctx, p.AssertionSlug)
		if err != nil {
			return err
		}
		if bi == nil || bi.Revoked {
			// Deleted or revoked while the task sat in the queue.
			return nil
		}

		classImage, err := store.Download(ctx, fmt.Sprintf("badgeclasses/%s/image.png", bi.BadgeClassID))
		if err != nil {
			return err
		}

		doc := map[string]interface{}{
			"@context": "https://w3id.org/openbadges/v2",
			"type":     "Assertion",
			"id":       fmt.Sprintf("%s/public/assertions/%s", baseURL, bi.Slug),
			"badge":    fmt.Sprintf("%s/public/badges/%s", baseURL, bi.BadgeClassID),
			"recipient": map[string]interface{}{
				"type":     "email",
				"identity": bi.RecipientEmail,
				"hashed":   false,
			},
			"issuedOn": bi.CreatedAt.UTC().Format(time.RFC3339),
		}
		if bi.Narrative != "" {
			doc["narrative"] = bi.Narrative
		}
		if bi.EvidenceURL != "" {
			doc["evidence"] = bi.EvidenceURL
		}

		assertionJSON, err := json.Marshal(doc)
		if err != nil {
			return asynq.SkipRetry
		}

		baked, err := baker.Bake(classImage, assertionJSON)
		if err != nil {
			return err
		}

		key := fmt.Sprintf("assertions/%s/baked.png", bi.Slug)
		url, err := store.Upload(ctx, key, baked, "image/png")
		if err != nil {
			return err
		}

		if err := assertions.SetImageURL(ctx, bi.Slug, url); err != nil {
			// Revoked between bake and write; the orphaned object gets
			// swept by the revocation cleanup task.
			logger.Error("Failed to record baked image URL", err)
			return nil
		}

		logger.Info("Baked assertion image", map[string]interface{}{
			"assertion": bi.Slug,
			"key":       key,
		})
		return nil
	}
}

// DeleteBadgeImagesHandler removes stored image objects under a prefix
// after a badge class delete or an assertion revocation.
func DeleteBadgeImagesHandler(store ObjectStore) func(ctx context.Context, t *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var p shared.DeleteBadgeImagesPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return asynq.SkipRetry
		}
		if p.Prefix == "" {
			return asynq.SkipRetry
		}

		if err := store.DeleteByPrefix(ctx, p.Prefix); err != nil {
			return err
		}

		logger.Info("Deleted badge images", map[string]interface{}{"prefix": p.Prefix})
		return nil
	}
}

// NotifyRecipientHandler emails a recipient about a newly awarded badge.
func NotifyRecipientHandler(
	assertions assertion.Repository,
	badges badgeclass.Repository,
	issuers issuer.Repository,
	emailSvc email.EmailService,
	baseURL string,
) func(ctx context.Context, t *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var p shared.BadgeNotificationPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return asynq.SkipRetry
		}

		bi, err := assertions.GetBySlug(ctx, p.AssertionSlug)
		if err != nil {
			return err
		}
		if bi == nil || bi.Revoked {
			return nil
		}

		bc, err := badges.GetByID(ctx, bi.BadgeClassID)
		if err != nil {
			return err
		}
		iss, err := issuers.GetByID(ctx, bi.IssuerID)
		if err != nil {
			return err
		}
		if bc == nil || iss == nil {
			// The badge or issuer vanished; nothing to announce.
			return nil
		}

		return emailSvc.SendBadgeAwardedEmail(ctx, email.BadgeAwardedData{
			Email:      bi.RecipientEmail,
			BadgeName:  bc.Name,
			IssuerName: iss.Name,
			BadgeURL:   fmt.Sprintf("%s/public/assertions/%s", baseURL, bi.Slug),
		})
	}
}
