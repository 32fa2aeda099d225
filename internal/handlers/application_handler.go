package handlers

import (
	"net/http"

	"algocamp_backend/internal/services"
	"algocamp_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// ApplicationHandler serves the public submission endpoint.
type ApplicationHandler struct {
	*BaseHandler
	applicationService *services.ApplicationService
}

func NewApplicationHandler(base *BaseHandler, applicationService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler:        base,
		applicationService: applicationService,
	}
}

// Submit accepts a trainee or trainer application. The response does not
// wait for profile enrichment; it only reflects the accepted row.
func (h *ApplicationHandler) Submit(c *gin.Context) {
	var req dto.SubmitApplicationRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	meta := dto.SubmissionMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	app, err := h.applicationService.Submit(c.Request.Context(), &req, meta)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":              app.ID,
		"scraping_status": app.ScrapingStatus,
		"submitted_at":    app.SubmittedAt,
	})
}
