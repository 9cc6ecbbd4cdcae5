package shared

// Asynq task type identifiers, shared between API enqueuers and the worker.
const (
	TypeRecordAuditEvent      = "audit:record"
	TypeBakeAssertionImage    = "badge:bake"
	TypeDeleteBadgeImages     = "badge:delete_images"
	TypeSendBadgeNotification = "badge:notify_recipient"
	TypeSendVerificationEmail = "email:verification"
	TypeCleanupExpiredTokens  = "auth:cleanup_expired_tokens"
)

// Queue names. Critical carries issuance side effects, default the rest.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// BakeAssertionPayload asks the worker to bake a recipient image.
type BakeAssertionPayload struct {
	AssertionSlug string `json:"assertion_slug"`
}

// DeleteBadgeImagesPayload asks the worker to remove stored image objects.
type DeleteBadgeImagesPayload struct {
	Prefix string `json:"prefix"`
}

// BadgeNotificationPayload asks the worker to email a recipient.
type BadgeNotificationPayload struct {
	AssertionSlug string `json:"assertion_slug"`
}

// VerificationEmailPayload asks the worker to send a verify-account email.
type VerificationEmailPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// CleanupExpiredTokensPayload is empty; the job sweeps by timestamp.
type CleanupExpiredTokensPayload struct{}
