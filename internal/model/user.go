package model

import "time"

// Role determines the allowed-operation set of a user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// ParseRole maps a request string onto a known role. ok is false for
// anything outside the three legal values.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleModerator, RoleUser:
		return Role(s), true
	default:
		return "", false
	}
}

// User 表示系统用户。The first user ever created is promoted to admin;
// everyone after that starts as a plain user.
type User struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Username     string `gorm:"type:varchar(50);uniqueIndex;not null"` // 昵称（唯一）
	Email        string `gorm:"type:varchar(150);uniqueIndex;not null"` // 邮箱（唯一）
	Password     string `gorm:"type:varchar(255);not null"`  // bcrypt 哈希
	Role         Role   `gorm:"type:varchar(16);default:user"` // 角色: admin / moderator / user
	Confirmed    bool   `gorm:"default:false"` // 邮箱是否已确认
	IsActive     bool   `gorm:"default:true"`  // false 表示已被封禁
	RefreshToken string `gorm:"type:varchar(255)"` // 当前有效的刷新令牌（每用户一枚）
	Avatar       string `gorm:"type:varchar(255)"` // 头像 URL

	Pictures []Picture `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Comments []Comment `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Ratings  []Rating  `gorm:"foreignKey:UserID"`
}
