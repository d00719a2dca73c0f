package api

import (
	"errors"
	"net/http"
	"strconv"

	"photoshare/internal/api/middleware"
	"photoshare/internal/pkg/messages"
	"photoshare/internal/pkg/metrics"
	"photoshare/internal/repository"

	"github.com/gin-gonic/gin"
)

type commentRequest struct {
	Text string `json:"text"`
}

// handleCreateComment 为图片新建评论。创建允许空文本，只有更新校验非空。
func (s *Server) handleCreateComment(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": s.catalog.Get(messages.VerificationError)})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	picture, err := s.pictures.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "load picture failed"})
		return
	}
	if picture == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": s.catalog.Get(messages.PictureNotFound)})
		return
	}

	comment, err := s.comments.Create(c.Request.Context(), id, user.ID, req.Text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": s.catalog.Get(messages.CommentNotCreated)})
		return
	}

	metrics.CommentsCreatedTotal.Inc()
	c.JSON(http.StatusCreated, toCommentView(comment))
}

// handleListComments 按插入顺序分页返回图片的评论（skip/limit）。
func (s *Server) handleListComments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	skip := 0
	if v, err := strconv.Atoi(c.Query("skip")); err == nil && v >= 0 {
		skip = v
	}
	limit := 10
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}

	comments, err := s.comments.ListByPicture(c.Request.Context(), id, skip, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "list comments failed"})
		return
	}
	if len(comments) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": s.catalog.Get(messages.CommentsNotFound)})
		return
	}
	c.JSON(http.StatusOK, toCommentViews(comments))
}

// handleUpdateComment 更新评论文本，仅作者本人。
func (s *Server) handleUpdateComment(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": s.catalog.Get(messages.VerificationError)})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	comment, err := s.comments.Update(c.Request.Context(), commentID, id, user.ID, req.Text)
	if errors.Is(err, repository.ErrEmptyValue) {
		c.JSON(http.StatusConflict, gin.H{"detail": s.catalog.Get(messages.CommentCantBeEmpty)})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "update comment failed"})
		return
	}
	if comment == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": s.catalog.Get(messages.CommentNotFound)})
		return
	}
	c.JSON(http.StatusOK, toCommentView(comment))
}

// handleDeleteComment 删除评论。作者校验不在此处：删除权限由角色门控保证。
func (s *Server) handleDeleteComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	comment, err := s.comments.Delete(c.Request.Context(), commentID, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "delete comment failed"})
		return
	}
	if comment == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": s.catalog.Get(messages.CommentNotFound)})
		return
	}
	c.JSON(http.StatusOK, toCommentView(comment))
}
