package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/hatch_server/internal/model/dto"
	"github.com/qs3c/hatch_server/internal/pkg/response"
	"github.com/qs3c/hatch_server/internal/service"
)

type EventHandler struct {
	eventService *service.EventService
}

func NewEventHandler(eventService *service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// List returns the published events the caller's tier unlocks, soonest first.
// GET /api/v1/events
func (h *EventHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var q dto.EventQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	events, err := h.eventService.ListVisible(c.Request.Context(), userID, &q)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"events": events})
}

// Get returns one event the caller is allowed to see.
// GET /api/v1/events/:id
func (h *EventHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	event, err := h.eventService.Get(userID, eventID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, event)
}

// AdminList pages through every event, drafts included, newest first.
// GET /api/v1/admin/events
func (h *EventHandler) AdminList(c *gin.Context) {
	var q dto.AdminEventQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	events, total, err := h.eventService.ListAll(&q)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessPage(c, total, q.Page, q.PageSize, events)
}

// Create adds an event to the catalog.
// POST /api/v1/admin/events
func (h *EventHandler) Create(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	event, err := h.eventService.Create(c.Request.Context(), adminID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "event created", event)
}

// Update applies a partial update.
// PUT /api/v1/admin/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	event, err := h.eventService.Update(c.Request.Context(), eventID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "event updated", event)
}

// Delete removes an event and its registrations.
// DELETE /api/v1/admin/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.eventService.Delete(c.Request.Context(), eventID); err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "event deleted", nil)
}
