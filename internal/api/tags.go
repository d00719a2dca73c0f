package api

import (
	"errors"
	"net/http"

	"photoshare/internal/pkg/messages"
	"photoshare/internal/repository"

	"github.com/gin-gonic/gin"
)

// handleListTags 返回全部标签。
func (s *Server) handleListTags(c *gin.Context) {
	tags, err := s.tags.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "list tags failed"})
		return
	}
	c.JSON(http.StatusOK, toTagViews(tags))
}

// handleGetTag 按 ID 查看标签。
func (s *Server) handleGetTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tag, err := s.tags.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "load tag failed"})
		return
	}
	if tag == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": s.catalog.Get(messages.TagnameNotFound)})
		return
	}
	c.JSON(http.StatusOK, tagView{ID: tag.ID, Tagname: tag.Tagname})
}

type updateTagRequest struct {
	Tagname string `json:"tagname" binding:"required"`
}

// handleUpdateTag 重命名标签；新名已被占用返回冲突。
func (s *Server) handleUpdateTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	tag, err := s.tags.Update(c.Request.Context(), id, req.Tagname)
	if errors.Is(err, repository.ErrDuplicateTag) {
		c.JSON(http.StatusConflict, gin.H{"detail": s.catalog.Get(messages.TagnameAlreadyExists)})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "update tag failed"})
		return
	}
	if tag == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": s.catalog.Get(messages.TagnameNotFound)})
		return
	}
	c.JSON(http.StatusOK, tagView{ID: tag.ID, Tagname: tag.Tagname})
}

// handleDeleteTag 删除标签。
func (s *Server) handleDeleteTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tag, err := s.tags.Remove(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "delete tag failed"})
		return
	}
	if tag == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": s.catalog.Get(messages.TagnameNotFound)})
		return
	}
	c.JSON(http.StatusOK, tagView{ID: tag.ID, Tagname: tag.Tagname})
}
