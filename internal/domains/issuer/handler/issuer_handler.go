package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"badgeforge-backend/internal/domains/issuer"
	"badgeforge-backend/internal/domains/issuer/model"
	"badgeforge-backend/internal/shared/middleware"
	"badgeforge-backend/internal/shared/response"
)

type IssuerHandler struct {
	service issuer.Service
}

func NewIssuerHandler(service issuer.Service) *IssuerHandler {
	return &IssuerHandler{service: service}
}

// Create handles POST /api/v1/issuers
func (h *IssuerHandler) Create(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req issuer.IssuerCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.service.CreateIssuer(c.Request.Context(), callerID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Issuer created successfully", resp)
}

// List handles GET /api/v1/issuers
func (h *IssuerHandler) List(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.service.ListMyIssuers(c.Request.Context(), callerID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Issuers retrieved successfully", resp)
}

// Get handles GET /api/v1/issuers/:issuerSlug
func (h *IssuerHandler) Get(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.service.GetIssuer(c.Request.Context(), callerID, c.Param("issuerSlug"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Issuer retrieved successfully", resp)
}

// ListStaff handles GET /api/v1/issuers/:issuerSlug/staff
func (h *IssuerHandler) ListStaff(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.service.ListStaff(c.Request.Context(), callerID, c.Param("issuerSlug"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Staff retrieved successfully", resp)
}

// AddStaff handles POST /api/v1/issuers/:issuerSlug/staff
func (h *IssuerHandler) AddStaff(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req issuer.StaffAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.service.AddStaff(c.Request.Context(), callerID, c.Param("issuerSlug"), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Staff member added successfully", resp)
}

// RemoveStaff handles DELETE /api/v1/issuers/:issuerSlug/staff/:userID
func (h *IssuerHandler) RemoveStaff(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		response.BadRequest(c, "Invalid user id")
		return
	}

	if err := h.service.RemoveStaff(c.Request.Context(), callerID, c.Param("issuerSlug"), userID); err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Staff member removed successfully", nil)
}

func (h *IssuerHandler) respondError(c *gin.Context, err error) {
	if verrs, ok := err.(validation.Errors); ok {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", verrs)
		return
	}
	status, message, code := model.GetErrorResponse(err)
	response.ErrorResponse(c, status, code, message)
}
