package repository

import (
	"context"
	"fmt"

	"photoshare/internal/model"

	"gorm.io/gorm"
)

// Tags 标签数据访问。
type Tags struct {
	db *gorm.DB
}

func NewTags(db *gorm.DB) *Tags {
	return &Tags{db: db}
}

// GetOrCreate 按名取标签，不存在则创建。并发下两个请求同时创建同名标签时，
// 后写的一方撞唯一索引，此处吞掉冲突并重读已存在的行。
func (r *Tags) GetOrCreate(ctx context.Context, tagname string) (*model.Tag, error) {
	var tag model.Tag
	err := r.db.WithContext(ctx).Where("tagname = ?", tagname).First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !notFound(err) {
		return nil, fmt.Errorf("get tag: %w", err)
	}

	tag = model.Tag{Tagname: tagname}
	if err := r.db.WithContext(ctx).Create(&tag).Error; err != nil {
		if isUniqueViolation(err) {
			var existing model.Tag
			if err := r.db.WithContext(ctx).Where("tagname = ?", tagname).First(&existing).Error; err != nil {
				return nil, fmt.Errorf("reread tag after conflict: %w", err)
			}
			return &existing, nil
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return &tag, nil
}

// List 返回全部标签。
func (r *Tags) List(ctx context.Context) ([]model.Tag, error) {
	tags := []model.Tag{}
	if err := r.db.WithContext(ctx).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// GetByID 按 ID 取标签；不存在返回 (nil, nil)。
func (r *Tags) GetByID(ctx context.Context, id uint) (*model.Tag, error) {
	var tag model.Tag
	err := r.db.WithContext(ctx).First(&tag, id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return &tag, nil
}

// GetByName 按名取标签；不存在返回 (nil, nil)。
func (r *Tags) GetByName(ctx context.Context, tagname string) (*model.Tag, error) {
	var tag model.Tag
	err := r.db.WithContext(ctx).Where("tagname = ?", tagname).First(&tag).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tag by name: %w", err)
	}
	return &tag, nil
}

// Update 重命名标签。不存在返回 (nil, nil)；新名已被占用返回 ErrDuplicateTag。
func (r *Tags) Update(ctx context.Context, id uint, tagname string) (*model.Tag, error) {
	tag, err := r.GetByID(ctx, id)
	if err != nil || tag == nil {
		return nil, err
	}

	existing, err := r.GetByName(ctx, tagname)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != id {
		return nil, ErrDuplicateTag
	}

	if err := r.db.WithContext(ctx).Model(tag).Update("tagname", tagname).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateTag
		}
		return nil, fmt.Errorf("update tag: %w", err)
	}
	tag.Tagname = tagname
	return tag, nil
}

// Remove 删除标签（孤儿标签不自动清理，但可以显式删除）。
// 不存在返回 (nil, nil)。
func (r *Tags) Remove(ctx context.Context, id uint) (*model.Tag, error) {
	tag, err := r.GetByID(ctx, id)
	if err != nil || tag == nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(tag).Error; err != nil {
		return nil, fmt.Errorf("delete tag: %w", err)
	}
	return tag, nil
}
