package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hsms-announcement-api/internal/models"
	"github.com/noah-isme/hsms-announcement-api/internal/service"
	appErrors "github.com/noah-isme/hsms-announcement-api/pkg/errors"
	"github.com/noah-isme/hsms-announcement-api/pkg/response"
)

type announcementService interface {
	ListActive(ctx context.Context) ([]models.Announcement, error)
	ListAll(ctx context.Context, caller string) ([]models.Announcement, error)
	Create(ctx context.Context, req service.CreateAnnouncementRequest) (*models.Announcement, error)
	Update(ctx context.Context, id string, req service.UpdateAnnouncementRequest) (*models.Announcement, error)
	Delete(ctx context.Context, id, caller string) error
}

// AnnouncementHandler exposes announcement endpoints.
type AnnouncementHandler struct {
	service announcementService
}

// NewAnnouncementHandler constructs an announcement handler.
func NewAnnouncementHandler(svc announcementService) *AnnouncementHandler {
	return &AnnouncementHandler{service: svc}
}

// RegisterRoutes attaches the announcement endpoints to the router group.
func (h *AnnouncementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/announcements/active", h.ListActive)
	rg.GET("/announcements", h.ListAll)
	rg.POST("/announcements", h.Create)
	rg.PUT("/announcements/:id", h.Update)
	rg.DELETE("/announcements/:id", h.Delete)
}

// ListActive godoc
// @Summary List active announcements
// @Description Announcements whose date window contains the current date
// @Tags Announcements
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /announcements/active [get]
func (h *AnnouncementHandler) ListActive(c *gin.Context) {
	announcements, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, announcements)
}

// ListAll godoc
// @Summary List all announcements
// @Tags Announcements
// @Produce json
// @Param username query string true "Caller username"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /announcements [get]
func (h *AnnouncementHandler) ListAll(c *gin.Context) {
	announcements, err := h.service.ListAll(c.Request.Context(), c.Query("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, announcements)
}

// Create godoc
// @Summary Create announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Param payload body service.CreateAnnouncementRequest true "Announcement payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /announcements [post]
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req service.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	announcement, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, announcement)
}

// Update godoc
// @Summary Update announcement
// @Description Replaces message and date window wholesale
// @Tags Announcements
// @Accept json
// @Produce json
// @Param id path string true "Announcement ID"
// @Param payload body service.UpdateAnnouncementRequest true "Announcement payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /announcements/{id} [put]
func (h *AnnouncementHandler) Update(c *gin.Context) {
	var req service.UpdateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	announcement, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, announcement)
}

// Delete godoc
// @Summary Delete announcement
// @Tags Announcements
// @Produce json
// @Param id path string true "Announcement ID"
// @Param username query string true "Caller username"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /announcements/{id} [delete]
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), c.Query("username")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "announcement deleted successfully"})
}
