package api

import (
	"errors"
	"net/http"

	"log/slog"

	"photoshare/internal/api/middleware"
	"photoshare/internal/pkg/messages"
	"photoshare/internal/pkg/metrics"
	"photoshare/internal/repository"

	"github.com/gin-gonic/gin"
)

type rateRequest struct {
	Rating int `json:"rating" binding:"required"`
}

// handleRatePicture 为图片评分（1–5）。
//
// 给自己的图片评分与图片不存在走同一个拒绝分支；重复评分返回冲突。
func (s *Server) handleRatePicture(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": s.catalog.Get(messages.VerificationError)})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": s.catalog.Get(messages.RatingMustBe1To5)})
		return
	}

	rating, err := s.ratings.Create(c.Request.Context(), id, user.ID, req.Rating)
	if errors.Is(err, repository.ErrOwnPicture) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": s.catalog.Get(messages.CantRateOwnPicture)})
		return
	}
	if errors.Is(err, repository.ErrAlreadyRated) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": s.catalog.Get(messages.AlreadyRatedPicture)})
		return
	}
	if err != nil {
		s.logger.Error("create rating failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "create rating failed"})
		return
	}

	metrics.RatingsSubmittedTotal.Inc()
	c.JSON(http.StatusCreated, gin.H{
		"rating": toRatingView(rating),
		"detail": s.catalog.Get(messages.RatingAdded),
	})
}

// handlePictureRatings 返回图片的全部评分及当前平均值。
func (s *Server) handlePictureRatings(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	picture, err := s.ratings.PictureRatings(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "load ratings failed"})
		return
	}
	if picture == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": s.catalog.Get(messages.PictureNotFound)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"picture_id":     picture.ID,
		"rating_average": picture.RatingAverage,
		"ratings":        toRatingViews(picture.Ratings),
	})
}

// handleDeleteRating 删除指定用户对图片的评分，仅 admin。
// 注意：删除不重算平均值。
func (s *Server) handleDeleteRating(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	rating, err := s.ratings.Remove(c.Request.Context(), id, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "delete rating failed"})
		return
	}
	if rating == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": s.catalog.Get(messages.UnableDeleteRating)})
		return
	}
	c.JSON(http.StatusOK, toRatingView(rating))
}
