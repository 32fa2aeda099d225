package handlers

import (
	"net/http"

	"algocamp_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the authenticated review endpoints.
type AdminHandler struct {
	*BaseHandler
	applicationService *services.ApplicationService
}

func NewAdminHandler(base *BaseHandler, applicationService *services.ApplicationService) *AdminHandler {
	return &AdminHandler{
		BaseHandler:        base,
		applicationService: applicationService,
	}
}

// ListApplications returns the paginated admin view with sensitive fields
// decrypted and masked.
func (h *AdminHandler) ListApplications(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	resp, err := h.applicationService.List(c.Request.Context(), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetApplication returns one application by id.
func (h *AdminHandler) GetApplication(c *gin.Context) {
	id := c.Param("id")

	summary, err := h.applicationService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
