// Package repository 提供基于 gorm 的数据访问层。
//
// 约定：实体不存在时返回 (nil, nil)，由路由层翻译为 404；
// 业务状态冲突（重复评分、空文本等）返回本包的哨兵错误。
package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrOwnPicture 给自己的图片评分（或图片不存在，两者共用同一错误）。
	ErrOwnPicture = errors.New("cannot rate own picture")
	// ErrAlreadyRated 同一用户对同一图片重复评分。
	ErrAlreadyRated = errors.New("picture already rated by user")
	// ErrEmptyValue 更新时提交了空文本 / 空名称。
	ErrEmptyValue = errors.New("value cannot be empty")
	// ErrDuplicateTag 标签名已存在。
	ErrDuplicateTag = errors.New("tagname already exists")
)

// notFound 将 gorm 的 record-not-found 归一化为 (nil, nil) 哨兵。
func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isUniqueViolation 粗粒度识别唯一约束冲突（postgres 与 sqlite 的措辞都覆盖）。
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		errors.Is(err, gorm.ErrDuplicatedKey)
}
