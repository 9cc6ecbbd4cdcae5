package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"badgeforge-backend/internal/domains/badgeclass"
	"badgeforge-backend/internal/domains/badgeclass/model"
	issuermodel "badgeforge-backend/internal/domains/issuer/model"
	"badgeforge-backend/internal/shared/middleware"
	"badgeforge-backend/internal/shared/response"
)

type BadgeClassHandler struct {
	service badgeclass.Service
}

func NewBadgeClassHandler(service badgeclass.Service) *BadgeClassHandler {
	return &BadgeClassHandler{service: service}
}

// Create handles POST /api/v1/issuers/:issuerSlug/badgeclasses
// Accepts multipart form data with an image file, or JSON with an
// image data URI.
func (h *BadgeClassHandler) Create(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req badgeclass.BadgeClassCreateRequest
	imageData, ok := bindBadgeClassRequest(c, &req)
	if !ok {
		return
	}

	resp, err := h.service.CreateBadgeClass(c.Request.Context(), callerID, c.Param("issuerSlug"), &req, imageData)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Badge class created successfully", resp)
}

// List handles GET /api/v1/issuers/:issuerSlug/badgeclasses
func (h *BadgeClassHandler) List(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.service.ListBadgeClasses(c.Request.Context(), callerID, c.Param("issuerSlug"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Badge classes retrieved successfully", resp)
}

// ListVisible handles GET /api/v1/badgeclasses
func (h *BadgeClassHandler) ListVisible(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.service.ListVisibleBadgeClasses(c.Request.Context(), callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Badge classes retrieved successfully", resp)
}

// Get handles GET /api/v1/issuers/:issuerSlug/badgeclasses/:badgeSlug
func (h *BadgeClassHandler) Get(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.service.GetBadgeClass(c.Request.Context(), callerID, c.Param("issuerSlug"), c.Param("badgeSlug"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Badge class retrieved successfully", resp)
}

// Update handles PUT /api/v1/issuers/:issuerSlug/badgeclasses/:badgeSlug
func (h *BadgeClassHandler) Update(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var createShape badgeclass.BadgeClassCreateRequest
	imageData, ok := bindBadgeClassRequest(c, &createShape)
	if !ok {
		return
	}
	req := badgeclass.BadgeClassUpdateRequest{
		Name:        createShape.Name,
		Description: createShape.Description,
		Criteria:    createShape.Criteria,
		Tags:        createShape.Tags,
		Image:       createShape.Image,
	}

	resp, err := h.service.UpdateBadgeClass(c.Request.Context(), callerID, c.Param("issuerSlug"), c.Param("badgeSlug"), &req, imageData)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Badge class updated successfully", resp)
}

// Delete handles DELETE /api/v1/issuers/:issuerSlug/badgeclasses/:badgeSlug
func (h *BadgeClassHandler) Delete(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	message, err := h.service.DeleteBadgeClass(c.Request.Context(), callerID, c.Param("issuerSlug"), c.Param("badgeSlug"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, message, nil)
}

// bindBadgeClassRequest fills the request from either a multipart form
// (returning uploaded image bytes) or a JSON body. Reports false after
// writing an error response.
func bindBadgeClassRequest(c *gin.Context, req *badgeclass.BadgeClassCreateRequest) ([]byte, bool) {
	contentType := c.GetHeader("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := c.ShouldBind(req); err != nil {
			response.BadRequest(c, "Invalid form data")
			return nil, false
		}

		file, _, err := c.Request.FormFile("image")
		if err != nil {
			// No file attached; the image may arrive as a data URI field.
			return nil, true
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			response.BadRequest(c, "Failed to read image upload")
			return nil, false
		}
		return data, true
	}

	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return nil, false
	}
	return nil, true
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
