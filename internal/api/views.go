package api

import (
	"net/http"
	"strconv"
	"time"

	"photoshare/internal/model"

	"github.com/gin-gonic/gin"
)

// 响应投影。gorm 模型不直接出网，统一经过这里的 view 结构体。

type userView struct {
	ID            uint       `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	Role          model.Role `json:"role"`
	Avatar        string     `json:"avatar"`
	IsActive      bool       `json:"is_active"`
	Confirmed     bool       `json:"confirmed"`
	PicturesCount int        `json:"pictures_count"`
	CommentsCount int        `json:"comments_count"`
	CreatedAt     time.Time  `json:"created_at"`
}

type tagView struct {
	ID      uint   `json:"id"`
	Tagname string `json:"tagname"`
}

type commentView struct {
	ID        uint      `json:"id"`
	Text      string    `json:"text"`
	PictureID uint      `json:"picture_id"`
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ratingView struct {
	ID        uint `json:"id"`
	Rating    int  `json:"rating"`
	UserID    uint `json:"user_id"`
	PictureID uint `json:"picture_id"`
}

type pictureView struct {
	ID            uint          `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	PictureURL    string        `json:"picture_url"`
	RatingAverage float64       `json:"rating_average"`
	UserID        uint          `json:"user_id"`
	Tags          []tagView     `json:"tags"`
	Comments      []commentView `json:"comments"`
	Ratings       []ratingView  `json:"ratings"`
	CreatedAt     time.Time     `json:"created_at"`
}

func toUserView(u *model.User) userView {
	return userView{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Role:          u.Role,
		Avatar:        u.Avatar,
		IsActive:      u.IsActive,
		Confirmed:     u.Confirmed,
		PicturesCount: len(u.Pictures),
		CommentsCount: len(u.Comments),
		CreatedAt:     u.CreatedAt,
	}
}

func toTagViews(tags []model.Tag) []tagView {
	out := make([]tagView, 0, len(tags))
	for _, t := range tags {
		out = append(out, tagView{ID: t.ID, Tagname: t.Tagname})
	}
	return out
}

func toCommentView(c *model.Comment) commentView {
	return commentView{
		ID:        c.ID,
		Text:      c.Text,
		PictureID: c.PictureID,
		UserID:    c.UserID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toCommentViews(comments []model.Comment) []commentView {
	out := make([]commentView, 0, len(comments))
	for i := range comments {
		out = append(out, toCommentView(&comments[i]))
	}
	return out
}

func toRatingView(r *model.Rating) ratingView {
	return ratingView{ID: r.ID, Rating: r.Rating, UserID: r.UserID, PictureID: r.PictureID}
}

func toRatingViews(ratings []model.Rating) []ratingView {
	out := make([]ratingView, 0, len(ratings))
	for i := range ratings {
		out = append(out, toRatingView(&ratings[i]))
	}
	return out
}

func toPictureView(p *model.Picture) pictureView {
	return pictureView{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		PictureURL:    p.PictureURL,
		RatingAverage: p.RatingAverage,
		UserID:        p.UserID,
		Tags:          toTagViews(p.Tags),
		Comments:      toCommentViews(p.Comments),
		Ratings:       toRatingViews(p.Ratings),
		CreatedAt:     p.CreatedAt,
	}
}

func toPictureViews(pictures []model.Picture) []pictureView {
	out := make([]pictureView, 0, len(pictures))
	for i := range pictures {
		out = append(out, toPictureView(&pictures[i]))
	}
	return out
}

// pathID 解析路径里的数字参数；非法值直接写回 400。
func pathID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}
