package main

import (
	"github.com/hibiken/asynq"

	"badgeforge-backend/internal/audit"
	assertionJob "badgeforge-backend/internal/domains/assertion/job"
	userJob "badgeforge-backend/internal/domains/user/job"
	"badgeforge-backend/internal/shared"
	"badgeforge-backend/pkg/container"
)

// HandlerRegistry binds task types to their worker handlers.
type HandlerRegistry struct {
	container *container.Container
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{container: c}
}

func (r *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	c := r.container
	baseURL := c.Config.App.BaseURL

	mux.Handle(shared.TypeRecordAuditEvent, audit.NewRecordEventHandler(c.AuditRepo))

	mux.HandleFunc(shared.TypeBakeAssertionImage, assertionJob.BakeAssertionHandler(
		c.AssertionRepo, c.Storage, c.ImageProcessor, baseURL))

	mux.HandleFunc(shared.TypeDeleteBadgeImages, assertionJob.DeleteBadgeImagesHandler(c.Storage))

	mux.HandleFunc(shared.TypeSendBadgeNotification, assertionJob.NotifyRecipientHandler(
		c.AssertionRepo, c.BadgeClassRepo, c.IssuerRepo, c.EmailService, baseURL))

	mux.HandleFunc(shared.TypeSendVerificationEmail, userJob.VerificationEmailHandler(
		c.EmailService, baseURL))

	mux.HandleFunc(shared.TypeCleanupExpiredTokens, userJob.CleanupExpiredTokensHandler(c.UserRepo))
}
