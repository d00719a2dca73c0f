package repository

import (
	"context"
	"database/sql"
	"fmt"

	"photoshare/internal/model"

	"gorm.io/gorm"
)

// Ratings 评分数据访问。
type Ratings struct {
	db *gorm.DB
}

func NewRatings(db *gorm.DB) *Ratings {
	return &Ratings{db: db}
}

// Create 为图片新增一条评分并重算平均分。
//
// 图片不存在与给自己的图片评分共用 ErrOwnPicture；同一用户重复评分
// 返回 ErrAlreadyRated（并发下由唯一索引兜底）。
func (r *Ratings) Create(ctx context.Context, pictureID, userID uint, value int) (*model.Rating, error) {
	var picture model.Picture
	err := r.db.WithContext(ctx).First(&picture, pictureID).Error
	if notFound(err) {
		return nil, ErrOwnPicture
	}
	if err != nil {
		return nil, fmt.Errorf("load picture: %w", err)
	}
	if picture.UserID == userID {
		return nil, ErrOwnPicture
	}

	var existing model.Rating
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND picture_id = ?", userID, pictureID).
		First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyRated
	}
	if !notFound(err) {
		return nil, fmt.Errorf("check existing rating: %w", err)
	}

	rating := model.Rating{UserID: userID, PictureID: pictureID, Rating: value}
	if err := r.db.WithContext(ctx).Create(&rating).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyRated
		}
		return nil, fmt.Errorf("create rating: %w", err)
	}

	avg, err := r.Average(ctx, pictureID)
	if err != nil {
		return nil, err
	}
	if avg != nil {
		if err := r.db.WithContext(ctx).Model(&picture).
			Update("rating_average", *avg).Error; err != nil {
			return nil, fmt.Errorf("update rating average: %w", err)
		}
	}
	return &rating, nil
}

// Average 计算图片当前评分的算术平均；没有任何评分返回 (nil, nil)。
func (r *Ratings) Average(ctx context.Context, pictureID uint) (*float64, error) {
	var avg sql.NullFloat64
	if err := r.db.WithContext(ctx).Model(&model.Rating{}).
		Select("AVG(rating)").
		Where("picture_id = ?", pictureID).
		Scan(&avg).Error; err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// Remove 删除 (user, picture) 的评分；不存在返回 (nil, nil)。
// 注意：删除不重算 rating_average，保持与新增的不对称。
func (r *Ratings) Remove(ctx context.Context, pictureID, userID uint) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND picture_id = ?", userID, pictureID).
		First(&rating).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load rating: %w", err)
	}

	if err := r.db.WithContext(ctx).Delete(&rating).Error; err != nil {
		return nil, fmt.Errorf("delete rating: %w", err)
	}
	return &rating, nil
}

// PictureRatings 返回带全部评分的图片；不存在返回 (nil, nil)。
func (r *Ratings) PictureRatings(ctx context.Context, pictureID uint) (*model.Picture, error) {
	var picture model.Picture
	err := r.db.WithContext(ctx).Preload("Ratings").First(&picture, pictureID).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load picture ratings: %w", err)
	}
	return &picture, nil
}
