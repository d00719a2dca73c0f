package repository

import (
	"context"
	"fmt"

	"photoshare/internal/model"

	"gorm.io/gorm"
)

// Comments 评论数据访问。
type Comments struct {
	db *gorm.DB
}

func NewComments(db *gorm.DB) *Comments {
	return &Comments{db: db}
}

// Create 新建评论。创建时允许空文本（只有更新校验非空）。
func (r *Comments) Create(ctx context.Context, pictureID, userID uint, text string) (*model.Comment, error) {
	comment := model.Comment{PictureID: pictureID, UserID: userID, Text: text}
	if err := r.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &comment, nil
}

// Update 更新评论文本。按 (comment_id, picture_id, user_id) 匹配，
// 未命中返回 (nil, nil)；空文本返回 ErrEmptyValue。
func (r *Comments) Update(ctx context.Context, commentID, pictureID, userID uint, text string) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.WithContext(ctx).
		Where("id = ? AND picture_id = ? AND user_id = ?", commentID, pictureID, userID).
		First(&comment).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load comment: %w", err)
	}

	if text == "" {
		return nil, ErrEmptyValue
	}

	if err := r.db.WithContext(ctx).Model(&comment).Update("text", text).Error; err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	comment.Text = text
	return &comment, nil
}

// Delete 按 (comment_id, picture_id) 删除评论，不校验作者——
// 作者以外的删除权限由上层的角色门控保证。未命中返回 (nil, nil)。
func (r *Comments) Delete(ctx context.Context, commentID, pictureID uint) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.WithContext(ctx).
		Where("id = ? AND picture_id = ?", commentID, pictureID).
		First(&comment).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load comment: %w", err)
	}

	if err := r.db.WithContext(ctx).Delete(&comment).Error; err != nil {
		return nil, fmt.Errorf("delete comment: %w", err)
	}
	return &comment, nil
}

// ListByPicture 按插入顺序分页返回图片的评论。
func (r *Comments) ListByPicture(ctx context.Context, pictureID uint, skip, limit int) ([]model.Comment, error) {
	comments := []model.Comment{}
	if err := r.db.WithContext(ctx).
		Where("picture_id = ?", pictureID).
		Offset(skip).
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
