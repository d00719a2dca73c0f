package model

import (
	"time"
)

// Picture 表示用户上传的一张图片。
//
// 与标签是多对多关系（通过 picture_tags 表关联），评分平均值在每次新增
// 评分后重算并落库。
type Picture struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name          string  `gorm:"type:varchar(100);not null"` // 图片名称
	Description   string  `gorm:"type:varchar(250);not null"` // 图片描述
	PictureURL    string  `gorm:"type:varchar(200);not null"` // 图床 URL
	RatingAverage float64 `gorm:"default:0"`                  // 派生字段：评分算术平均

	UserID uint `gorm:"not null;index"` // 所属用户 ID
	User   User `gorm:"foreignKey:UserID"`

	Tags     []Tag     `gorm:"many2many:picture_tags;constraint:OnDelete:CASCADE"`
	Comments []Comment `gorm:"foreignKey:PictureID;constraint:OnDelete:CASCADE"`
	Ratings  []Rating  `gorm:"foreignKey:PictureID;constraint:OnDelete:CASCADE"`
}

// Tag 表示图片标签。按需惰性创建（get or create），孤儿标签不自动删除。
type Tag struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Tagname string `gorm:"type:varchar(50);uniqueIndex;not null"` // 标签名（唯一，大小写敏感）

	Pictures []Picture `gorm:"many2many:picture_tags"`
}

// Comment 表示针对某张图片的评论，仅作者本人可编辑。
type Comment struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Text      string `gorm:"type:varchar(200);not null"`
	PictureID uint   `gorm:"not null;index"`
	UserID    uint   `gorm:"not null;index"`
}

// Rating 表示某用户对某图片的一次评分。
//
// (user_id, picture_id) 上的唯一索引保证同一用户对同一图片至多评分一次，
// 并发下的重复插入由约束兜底。
type Rating struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Rating    int  `gorm:"not null"` // 取值范围 [1,5]
	UserID    uint `gorm:"not null;uniqueIndex:idx_ratings_user_picture"`
	PictureID uint `gorm:"not null;uniqueIndex:idx_ratings_user_picture"`
}

// InvalidToken 是令牌吊销台账（append-only）。
//
// 每次插入后会顺手清理超过刷新令牌 TTL 的旧记录。
type InvalidToken struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	Token string `gorm:"type:varchar(512);not null;index"`
}
