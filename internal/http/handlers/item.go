package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cinebridge-backend/internal/http/response"
	"github.com/yungbote/cinebridge-backend/internal/platform/apierr"
	"github.com/yungbote/cinebridge-backend/internal/services"
)

type ItemHandler struct {
	catalog services.CatalogService
}

func NewItemHandler(catalog services.CatalogService) *ItemHandler {
	return &ItemHandler{catalog: catalog}
}

type rateRequest struct {
	Rating *float64 `json:"rating" form:"rating" binding:"required"`
}

type commentRequest struct {
	Text string `json:"text" form:"text"`
}

type tagRequest struct {
	Name      string   `json:"name" form:"name" binding:"required"`
	Relevance *float64 `json:"relevance" form:"relevance" binding:"required"`
}

type uploadRequest struct {
	Title  string   `json:"title" binding:"required"`
	Labels []string `json:"labels"`
	Tags   []string `json:"tags"`
}

func itemID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.RespondAPIError(c, apierr.Validation("invalid item id"))
		return 0, false
	}
	return id, true
}

// GET /api/items/:id
func (h *ItemHandler) GetItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	views, err := h.catalog.GetItem(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, views)
}

// POST /api/items/:id/rate
func (h *ItemHandler) Rate(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	var req rateRequest
	if err := c.ShouldBind(&req); err != nil {
		response.RespondAPIError(c, apierr.Validation("rating is required"))
		return
	}
	if err := h.catalog.Rate(c.Request.Context(), id, *req.Rating); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/items/:id/comment
func (h *ItemHandler) Comment(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	var req commentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&req); err != nil {
			response.RespondAPIError(c, apierr.Validation("invalid request body"))
			return
		}
	}
	if strings.TrimSpace(req.Text) == "" {
		req.Text = c.Query("text")
	}
	if err := h.catalog.Comment(c.Request.Context(), id, req.Text); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// DELETE /api/items/:id/comment
func (h *ItemHandler) DeleteComment(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteComment(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/items/:id/tag
func (h *ItemHandler) Tag(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	var req tagRequest
	if err := c.ShouldBind(&req); err != nil {
		response.RespondAPIError(c, apierr.Validation("name and relevance are required"))
		return
	}
	if err := h.catalog.Tag(c.Request.Context(), id, req.Name, *req.Relevance); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"msg": "Tag added successfully"})
}

// POST /api/items
func (h *ItemHandler) Upload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.Validation("title is required"))
		return
	}
	id, err := h.catalog.Upload(c.Request.Context(), services.UploadInput{
		Title:  req.Title,
		Labels: req.Labels,
		Tags:   req.Tags,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"id": id})
}

// DELETE /api/items/:id
func (h *ItemHandler) Delete(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"id": id})
}
