package repository

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"photoshare/internal/model"

	"gorm.io/gorm"
)

// Users 用户数据访问。
type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// Profile 是带统计数字的用户资料投影。
type Profile struct {
	ID            uint       `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	Role          model.Role `json:"role"`
	Avatar        string     `json:"avatar"`
	IsActive      bool       `json:"is_active"`
	Confirmed     bool       `json:"confirmed"`
	PicturesCount int64      `json:"pictures_count"`
	CommentsCount int64      `json:"comments_count"`
	CreatedAt     time.Time  `json:"created_at"`
}

// UserFilter 用户搜索条件。零值字段不参与过滤。
type UserFilter struct {
	Username      string // 精确匹配
	UsernameILike string // 模糊匹配（不区分大小写）
	EmailILike    string
	Role          string
	Confirmed     *bool
	IsActive      *bool
	OrderBy       string // id / username / email
	Desc          bool
}

// GetByEmail 按邮箱取用户，预加载关联；不存在返回 (nil, nil)。
func (r *Users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Pictures").
		Preload("Comments").
		Preload("Ratings").
		Where("email = ?", email).
		First(&user).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

// GetByUsername 按昵称取用户；不存在返回 (nil, nil)。
func (r *Users) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &user, nil
}

// Create 创建用户。空库里的第一个用户直接授予 admin 角色；
// 头像默认为按邮箱哈希生成的 gravatar 地址。
func (r *Users) Create(ctx context.Context, user *model.User) error {
	if user.Avatar == "" {
		user.Avatar = gravatarURL(user.Email)
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count == 0 {
		user.Role = model.RoleAdmin
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateRefreshToken 记录用户当前唯一有效的刷新令牌（空串表示清除）。
func (r *Users) UpdateRefreshToken(ctx context.Context, userID uint, token string) error {
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("refresh_token", token).Error; err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}
	return nil
}

// ConfirmEmail 将邮箱标记为已确认。对不存在的邮箱静默返回。
func (r *Users) ConfirmEmail(ctx context.Context, email string) error {
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).
		Update("confirmed", true).Error; err != nil {
		return fmt.Errorf("confirm email: %w", err)
	}
	return nil
}

// ChangePassword 更新密码哈希。
func (r *Users) ChangePassword(ctx context.Context, userID uint, passwordHash string) error {
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("password", passwordHash).Error; err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// EditProfile 更新昵称和/或头像。不存在返回 (nil, nil)。
func (r *Users) EditProfile(ctx context.Context, email, username, avatarURL string) (*model.User, error) {
	user, err := r.GetByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, err
	}

	updates := map[string]any{}
	if username != "" {
		updates["username"] = username
	}
	if avatarURL != "" {
		updates["avatar"] = avatarURL
	}
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("edit profile: %w", err)
		}
	}
	return user, nil
}

// GetProfile 返回带图片数 / 评论数的用户资料。
func (r *Users) GetProfile(ctx context.Context, user *model.User) (*Profile, error) {
	if user == nil {
		return nil, nil
	}

	var picturesCount int64
	if err := r.db.WithContext(ctx).Model(&model.Picture{}).
		Where("user_id = ?", user.ID).
		Count(&picturesCount).Error; err != nil {
		return nil, fmt.Errorf("count pictures: %w", err)
	}

	var commentsCount int64
	if err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("user_id = ?", user.ID).
		Count(&commentsCount).Error; err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}

	return &Profile{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		Role:          user.Role,
		Avatar:        user.Avatar,
		IsActive:      user.IsActive,
		Confirmed:     user.Confirmed,
		PicturesCount: picturesCount,
		CommentsCount: commentsCount,
		CreatedAt:     user.CreatedAt,
	}, nil
}

// Ban 封禁用户。不存在返回 (nil, nil)。
func (r *Users) Ban(ctx context.Context, email string) (*model.User, error) {
	return r.setActive(ctx, email, false)
}

// Activate 解封用户。不存在返回 (nil, nil)。
func (r *Users) Activate(ctx context.Context, email string) (*model.User, error) {
	return r.setActive(ctx, email, true)
}

func (r *Users) setActive(ctx context.Context, email string, active bool) (*model.User, error) {
	user, err := r.GetByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(user).Update("is_active", active).Error; err != nil {
		return nil, fmt.Errorf("set active: %w", err)
	}
	user.IsActive = active
	return user, nil
}

// ChangeRole 更改用户角色。不存在返回 (nil, nil)。
func (r *Users) ChangeRole(ctx context.Context, email string, role model.Role) (*model.User, error) {
	user, err := r.GetByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(user).Update("role", role).Error; err != nil {
		return nil, fmt.Errorf("change role: %w", err)
	}
	user.Role = role
	return user, nil
}

// Search 按条件搜索用户，预加载关联。无匹配返回空切片。
func (r *Users) Search(ctx context.Context, f UserFilter) ([]model.User, error) {
	q := r.db.WithContext(ctx).Model(&model.User{}).
		Preload("Pictures").
		Preload("Comments").
		Preload("Ratings")

	if f.Username != "" {
		q = q.Where("username = ?", f.Username)
	}
	if f.UsernameILike != "" {
		q = q.Where("username ILIKE ?", "%"+f.UsernameILike+"%")
	}
	if f.EmailILike != "" {
		q = q.Where("email ILIKE ?", "%"+f.EmailILike+"%")
	}
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Confirmed != nil {
		q = q.Where("confirmed = ?", *f.Confirmed)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}

	q = q.Order(orderClause(f.OrderBy, f.Desc, map[string]bool{
		"id": true, "username": true, "email": true,
	}))

	users := []model.User{}
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

// orderClause 将排序键白名单化后拼出 ORDER BY 子句，非法键退回 id。
func orderClause(key string, desc bool, allowed map[string]bool) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if !allowed[key] {
		key = "id"
	}
	if desc {
		return key + " DESC"
	}
	return key
}

func gravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:])
}
