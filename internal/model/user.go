package model

import "gorm.io/gorm"

// User 用户表（管理员 / 评审专家）— 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey"                               json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                         json:"name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex:uq_users_email" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                         json:"-"`
	Role         string `gorm:"type:varchar(20);not null"                          json:"role"` // admin | evaluateur
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// BeforeCreate 生成主键
func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.UserID)
	return nil
}
