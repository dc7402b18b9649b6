package handlers

import (
	"errors"
	"net/http"

	"github.com/suchockipawel/nottodo/internal/auth"
	"github.com/suchockipawel/nottodo/internal/dto"
	"github.com/suchockipawel/nottodo/internal/service"

	"github.com/gin-gonic/gin"
)

// ShareHandler handles sharing and commenting.
type ShareHandler struct {
	svc *service.ShareService
}

func NewShareHandler(svc *service.ShareService) *ShareHandler {
	return &ShareHandler{svc: svc}
}

// Share godoc
// @Summary      Share a Not To Do with another user
// @Tags         shares
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path  int               true  "Not To Do ID"
// @Param        body  body  dto.ShareRequest  true  "Recipient"
// @Success      201   {object}  map[string]int64
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /nottodos/{id}/share [post]
func (h *ShareHandler) Share(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	share, err := h.svc.Share(c.Request.Context(), auth.UserIDFromContext(c), id, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		case errors.Is(err, service.ErrAlreadyShared):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrShareWithSelf):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": share.ID})
}

// ListShared godoc
// @Summary      List Not To Dos shared with me
// @Tags         shares
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ListSharedResponse
// @Router       /shared [get]
func (h *ShareHandler) ListShared(c *gin.Context) {
	views, err := h.svc.ListShared(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	items := make([]dto.SharedNotToDoResponse, len(views))
	for i, v := range views {
		comments := make([]dto.CommentResponse, len(v.Comments))
		for j, cm := range v.Comments {
			comments[j] = dto.CommentResponse{
				ID:        cm.ID,
				UserID:    cm.UserID,
				Text:      cm.Text,
				CreatedAt: cm.CreatedAt,
			}
		}
		items[i] = dto.SharedNotToDoResponse{
			ID:       v.Share.ID,
			SharedAt: v.Share.CreatedAt,
			Item:     nottodoToResponse(v.Item),
			Comments: comments,
		}
	}
	c.JSON(http.StatusOK, dto.ListSharedResponse{Items: items})
}

// Unshare godoc
// @Summary      Remove a share I received
// @Tags         shares
// @Security     CookieAuth
// @Param        id   path  int  true  "Share ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /shared/{id} [delete]
func (h *ShareHandler) Unshare(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Unshare(c.Request.Context(), auth.UserIDFromContext(c), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// AddComment godoc
// @Summary      Comment on a shared Not To Do
// @Tags         shares
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path  int                 true  "Share ID"
// @Param        body  body  dto.CommentRequest  true  "Comment"
// @Success      201   {object}  dto.CommentResponse
// @Failure      404   {object}  map[string]string
// @Router       /shared/{id}/comments [post]
func (h *ShareHandler) AddComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	comment, err := h.svc.AddComment(c.Request.Context(), auth.UserIDFromContext(c), id, req.Text)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, dto.CommentResponse{
		ID:        comment.ID,
		UserID:    comment.UserID,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	})
}
