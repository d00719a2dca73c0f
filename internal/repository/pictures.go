package repository

import (
	"context"
	"fmt"

	"photoshare/internal/model"

	"gorm.io/gorm"
)

const (
	// MaxTagsPerPicture 单张图片最多标签数。
	MaxTagsPerPicture = 5
	// MaxTagLength 单个标签最大长度。
	MaxTagLength = 25
)

// Pictures 图片数据访问。
type Pictures struct {
	db   *gorm.DB
	tags *Tags
}

func NewPictures(db *gorm.DB) *Pictures {
	return &Pictures{db: db, tags: NewTags(db)}
}

// PictureFilter 图片搜索条件。零值字段不参与过滤。
type PictureFilter struct {
	Name             string // 精确匹配
	NameILike        string
	Description      string
	DescriptionILike string
	Rating           *float64 // rating_average 等于
	RatingLT         *float64 // rating_average <
	RatingGTE        *float64 // rating_average >=
	TagName          string   // 关联标签名精确匹配
	OrderBy          string   // id / name / description / rating_average
	Desc             bool
}

// Save 落库一张已上传的图片，标签按名惰性创建。
// 标签校验（数量、长度）由调用方在任何写入前完成。
func (r *Pictures) Save(ctx context.Context, picture *model.Picture, tagNames []string) (*model.Picture, error) {
	tags := make([]model.Tag, 0, len(tagNames))
	for _, name := range tagNames {
		tag, err := r.tags.GetOrCreate(ctx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	picture.Tags = tags

	if err := r.db.WithContext(ctx).Create(picture).Error; err != nil {
		return nil, fmt.Errorf("save picture: %w", err)
	}
	return picture, nil
}

// GetByID 按 ID 取图片，预加载标签 / 评论 / 评分；不存在返回 (nil, nil)。
func (r *Pictures) GetByID(ctx context.Context, id uint) (*model.Picture, error) {
	var picture model.Picture
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Preload("Comments").
		Preload("Ratings").
		First(&picture, id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get picture: %w", err)
	}
	return &picture, nil
}

// UpdateName 更新图片名称。仅图片所有者可见：按 (id, user_id) 匹配，
// 不存在或非本人返回 (nil, nil)；空名称返回 ErrEmptyValue。
func (r *Pictures) UpdateName(ctx context.Context, id, userID uint, name string) (*model.Picture, error) {
	return r.updateField(ctx, id, userID, "name", name)
}

// UpdateDescription 更新图片描述，语义同 UpdateName。
func (r *Pictures) UpdateDescription(ctx context.Context, id, userID uint, description string) (*model.Picture, error) {
	return r.updateField(ctx, id, userID, "description", description)
}

func (r *Pictures) updateField(ctx context.Context, id, userID uint, column, value string) (*model.Picture, error) {
	var picture model.Picture
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&picture).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load picture: %w", err)
	}

	if value == "" {
		return nil, ErrEmptyValue
	}

	if err := r.db.WithContext(ctx).Model(&picture).Update(column, value).Error; err != nil {
		return nil, fmt.Errorf("update picture %s: %w", column, err)
	}
	return &picture, nil
}

// Remove 删除图片。允许所有者或 admin；其余情况（包括图片不存在）
// 一律返回 (nil, nil)，两种结果在此层不作区分。
func (r *Pictures) Remove(ctx context.Context, id uint, actor *model.User) (*model.Picture, error) {
	var picture model.Picture
	err := r.db.WithContext(ctx).First(&picture, id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load picture: %w", err)
	}

	if actor.Role != model.RoleAdmin && picture.UserID != actor.ID {
		return nil, nil
	}

	if err := r.db.WithContext(ctx).Select("Comments", "Ratings").Delete(&picture).Error; err != nil {
		return nil, fmt.Errorf("delete picture: %w", err)
	}
	return &picture, nil
}

// TagsOf 返回图片的标签列表；图片不存在返回 (nil, nil)。
func (r *Pictures) TagsOf(ctx context.Context, id uint) ([]model.Tag, error) {
	picture, err := r.GetByID(ctx, id)
	if err != nil || picture == nil {
		return nil, err
	}
	return picture.Tags, nil
}

// Search 按条件搜索图片，预加载关联。无匹配返回空切片。
func (r *Pictures) Search(ctx context.Context, f PictureFilter) ([]model.Picture, error) {
	q := r.db.WithContext(ctx).Model(&model.Picture{}).
		Preload("Tags").
		Preload("Comments").
		Preload("Ratings")

	if f.Name != "" {
		q = q.Where("pictures.name = ?", f.Name)
	}
	if f.NameILike != "" {
		q = q.Where("pictures.name ILIKE ?", "%"+f.NameILike+"%")
	}
	if f.Description != "" {
		q = q.Where("pictures.description = ?", f.Description)
	}
	if f.DescriptionILike != "" {
		q = q.Where("pictures.description ILIKE ?", "%"+f.DescriptionILike+"%")
	}
	if f.Rating != nil {
		q = q.Where("pictures.rating_average = ?", *f.Rating)
	}
	if f.RatingLT != nil {
		q = q.Where("pictures.rating_average < ?", *f.RatingLT)
	}
	if f.RatingGTE != nil {
		q = q.Where("pictures.rating_average >= ?", *f.RatingGTE)
	}
	if f.TagName != "" {
		q = q.Joins("JOIN picture_tags ON picture_tags.picture_id = pictures.id").
			Joins("JOIN tags ON tags.id = picture_tags.tag_id").
			Where("tags.tagname = ?", f.TagName).
			Distinct("pictures.*")
	}

	q = q.Order("pictures." + orderClause(f.OrderBy, f.Desc, map[string]bool{
		"id": true, "name": true, "description": true, "rating_average": true,
	}))

	pictures := []model.Picture{}
	if err := q.Find(&pictures).Error; err != nil {
		return nil, fmt.Errorf("search pictures: %w", err)
	}
	return pictures, nil
}
