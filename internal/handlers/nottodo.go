package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/suchockipawel/nottodo/internal/auth"
	dom "github.com/suchockipawel/nottodo/internal/domain"
	"github.com/suchockipawel/nottodo/internal/dto"
	"github.com/suchockipawel/nottodo/internal/service"

	"github.com/gin-gonic/gin"
)

// NotToDoHandler handles the Not To Do CRUD and derived read endpoints.
type NotToDoHandler struct {
	svc *service.NotToDoService
}

func NewNotToDoHandler(svc *service.NotToDoService) *NotToDoHandler {
	return &NotToDoHandler{svc: svc}
}

// Create godoc
// @Summary      Create a Not To Do
// @Tags         nottodos
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.CreateNotToDoRequest  true  "Not To Do body"
// @Success      201   {object}  dto.NotToDoResponse
// @Failure      400   {object}  map[string]string
// @Router       /nottodos [post]
func (h *NotToDoHandler) Create(c *gin.Context) {
	var req dto.CreateNotToDoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	repeat := req.Repeat
	if repeat == "" {
		repeat = string(dom.RepeatNone)
	}
	n, err := h.svc.Create(c.Request.Context(), auth.UserIDFromContext(c), service.NotToDoInput{
		Title:          req.Title,
		Description:    req.Description,
		Context:        dom.Context(req.Context),
		ScheduledStart: req.ScheduledStart.Ptr(),
		ScheduledEnd:   req.ScheduledEnd.Ptr(),
		Repeat:         dom.Repeat(repeat),
	})
	if err != nil {
		status := http.StatusInternalServerError
		if isValidationErr(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, nottodoToResponse(n))
}

// List godoc
// @Summary      List Not To Dos
// @Tags         nottodos
// @Produce      json
// @Security     CookieAuth
// @Param        context  query     string  false  "Context filter: Home, Work, Other or All"
// @Success      200      {object}  dto.ListNotToDosResponse
// @Failure      400      {object}  map[string]string
// @Router       /nottodos [get]
func (h *NotToDoHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), auth.UserIDFromContext(c), c.Query("context"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidContext) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.ListNotToDosResponse{Items: nottodosToResponses(list)})
}

// GetByID godoc
// @Summary      Get a Not To Do by ID
// @Tags         nottodos
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Not To Do ID"
// @Success      200  {object}  dto.NotToDoResponse
// @Failure      404  {object}  map[string]string
// @Router       /nottodos/{id} [get]
func (h *NotToDoHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	n, err := h.svc.GetByID(c.Request.Context(), auth.UserIDFromContext(c), id)
	if err != nil {
		respondServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, nottodoToResponse(n))
}

// Update godoc
// @Summary      Update a Not To Do
// @Tags         nottodos
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      int  true  "Not To Do ID"
// @Param        body  body      dto.UpdateNotToDoRequest  true  "Partial update"
// @Success      200   {object}  dto.NotToDoResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /nottodos/{id} [patch]
func (h *NotToDoHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateNotToDoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var start, end **time.Time
	if req.ScheduledStart != nil {
		p := req.ScheduledStart.Ptr()
		start = &p
	}
	if req.ScheduledEnd != nil {
		p := req.ScheduledEnd.Ptr()
		end = &p
	}
	n, err := h.svc.Update(c.Request.Context(), auth.UserIDFromContext(c), id,
		req.Title, req.Description, req.Context, start, end, req.Repeat)
	if err != nil {
		respondServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, nottodoToResponse(n))
}

// Delete godoc
// @Summary      Delete a Not To Do
// @Tags         nottodos
// @Security     CookieAuth
// @Param        id   path  int  true  "Not To Do ID"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Router       /nottodos/{id} [delete]
func (h *NotToDoHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), auth.UserIDFromContext(c), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Copy godoc
// @Summary      Duplicate an own or shared Not To Do
// @Tags         nottodos
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Not To Do ID"
// @Success      201  {object}  dto.NotToDoResponse
// @Failure      404  {object}  map[string]string
// @Router       /nottodos/{id}/copy [post]
func (h *NotToDoHandler) Copy(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	n, err := h.svc.Copy(c.Request.Context(), auth.UserIDFromContext(c), id)
	if err != nil {
		respondServiceErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, nottodoToResponse(n))
}

// Events godoc
// @Summary      Calendar feed of all occurrences
// @Tags         nottodos
// @Produce      json
// @Security     CookieAuth
// @Success      200  {array}  dto.EventResponse
// @Router       /nottodos/events [get]
func (h *NotToDoHandler) Events(c *gin.Context) {
	events, err := h.svc.Events(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.EventResponse, len(events))
	for i, e := range events {
		out[i] = dto.EventResponse{
			ID:          e.ID,
			Title:       e.Title,
			Start:       e.Start,
			End:         e.End,
			Description: e.Description,
			Context:     string(e.Context),
		}
	}
	c.JSON(http.StatusOK, out)
}

// CheckReminders godoc
// @Summary      Whether any future Not To Do exists
// @Tags         nottodos
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.CheckRemindersResponse
// @Router       /nottodos/reminders/check [get]
func (h *NotToDoHandler) CheckReminders(c *gin.Context) {
	has, err := h.svc.HasUpcoming(c.Request.Context(), auth.UserIDFromContext(c), time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.CheckRemindersResponse{HasReminders: has})
}

// ReminderLog godoc
// @Summary      Delivery log of an item's reminders
// @Tags         nottodos
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Not To Do ID"
// @Success      200  {object}  dto.ReminderLogResponse
// @Failure      404  {object}  map[string]string
// @Router       /nottodos/{id}/reminders [get]
func (h *NotToDoHandler) ReminderLog(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	log, err := h.svc.ReminderLog(c.Request.Context(), auth.UserIDFromContext(c), id)
	if err != nil {
		respondServiceErr(c, err)
		return
	}
	items := make([]dto.ReminderLogEntry, len(log))
	for i, e := range log {
		items[i] = dto.ReminderLogEntry{
			ID:              e.ID,
			Email:           e.Email,
			Subject:         e.Subject,
			OccurrenceStart: e.OccurrenceStart,
			SentAt:          e.SentAt,
			Success:         e.Success,
			ErrorMessage:    e.ErrorMessage,
		}
	}
	c.JSON(http.StatusOK, dto.ReminderLogResponse{Items: items})
}

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func respondServiceErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case isValidationErr(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func isValidationErr(err error) bool {
	return errors.Is(err, service.ErrInvalidRepeat) ||
		errors.Is(err, service.ErrInvalidContext) ||
		errors.Is(err, service.ErrMissingSchedule) ||
		errors.Is(err, service.ErrStartAfterEnd)
}

func nottodoToResponse(n dom.NotToDo) dto.NotToDoResponse {
	return dto.NotToDoResponse{
		ID:             n.ID,
		Title:          n.Title,
		Description:    n.Description,
		Context:        string(n.Context),
		ScheduledStart: n.ScheduledStart,
		ScheduledEnd:   n.ScheduledEnd,
		Repeat:         string(n.Repeat),
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      n.UpdatedAt,
	}
}

func nottodosToResponses(list []dom.NotToDo) []dto.NotToDoResponse {
	out := make([]dto.NotToDoResponse, len(list))
	for i := range list {
		out[i] = nottodoToResponse(list[i])
	}
	return out
}
