package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"badgeforge-backend/internal/domains/assertion"
	"badgeforge-backend/internal/domains/assertion/model"
	issuermodel "badgeforge-backend/internal/domains/issuer/model"
	"badgeforge-backend/internal/shared/middleware"
	"badgeforge-backend/internal/shared/response"
)

type AssertionHandler struct {
	service assertion.Service
}

func NewAssertionHandler(service assertion.Service) *AssertionHandler {
	return &AssertionHandler{service: service}
}

// Issue handles POST /api/v1/issuers/:issuerSlug/badgeclasses/:badgeSlug/assertions
func (h *AssertionHandler) Issue(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req assertion.AssertionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.service.IssueOne(c.Request.Context(), callerID, c.Param("issuerSlug"), c.Param("badgeSlug"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Badge issued successfully", resp)
}

// IssueBatch handles POST /api/v1/issuers/:issuerSlug/badgeclasses/:badgeSlug/assertions/batch
func (h *AssertionHandler) IssueBatch(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req assertion.BatchAssertionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.service.IssueBatch(c.Request.Context(), callerID, c.Param("issuerSlug"), c.Param("badgeSlug"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Badges issued successfully", resp)
}

// Import handles POST /api/v1/issuers/:issuerSlug/badgeclasses/:badgeSlug/assertions/import
// The body is a multipart form with a "file" xlsx upload and an
// optional "create_notification" flag.
func (h *AssertionHandler) Import(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "A spreadsheet file upload is required")
		return
	}
	defer file.Close()

	createNotification, _ := strconv.ParseBool(c.PostForm("create_notification"))

	resp, err := h.service.ImportXLSX(c.Request.Context(), callerID, c.Param("issuerSlug"), c.Param("badgeSlug"), file, createNotification)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Badges issued successfully", resp)
}

// ListForBadgeClass handles GET /api/v1/issuers/:issuerSlug/badgeclasses/:badgeSlug/assertions
func (h *AssertionHandler) ListForBadgeClass(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.service.ListForBadgeClass(c.Request.Context(), callerID, c.Param("issuerSlug"), c.Param("badgeSlug"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Assertions retrieved successfully", resp)
}

// ListForIssuer handles GET /api/v1/issuers/:issuerSlug/assertions
// An optional "recipient" query parameter filters by recipient email.
func (h *AssertionHandler) ListForIssuer(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.service.ListForIssuer(c.Request.Context(), callerID, c.Param("issuerSlug"), c.Query("recipient"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Assertions retrieved successfully", resp)
}

// Get handles GET /api/v1/issuers/:issuerSlug/badgeclasses/:badgeSlug/assertions/:assertionSlug
func (h *AssertionHandler) Get(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.service.GetAssertion(c.Request.Context(), callerID,
		c.Param("issuerSlug"), c.Param("badgeSlug"), c.Param("assertionSlug"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Assertion retrieved successfully", resp)
}

// Revoke handles DELETE /api/v1/issuers/:issuerSlug/badgeclasses/:badgeSlug/assertions/:assertionSlug
// The body must carry a revocation_reason.
func (h *AssertionHandler) Revoke(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req assertion.RevokeRequest
	// An empty or malformed body is treated as a missing reason; the
	// service rejects it before any lookups.
	_ = c.ShouldBindJSON(&req)

	message, err := h.service.Revoke(c.Request.Context(), callerID,
		c.Param("issuerSlug"), c.Param("badgeSlug"), c.Param("assertionSlug"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, message, nil)
}

func respondError(c *gin.Context, err error) {
	if verrs, ok := err.(validation.Errors); ok {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", verrs)
		return
	}
	if issuermodel.IsDomainError(err) {
		status, message, code := issuermodel.GetErrorResponse(err)
		response.ErrorResponse(c, status, code, message)
		return
	}
	status, message, code := model.GetErrorResponse(err)
	response.ErrorResponse(c, status, code, message)
}
