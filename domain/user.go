package domain

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID          uint   `gorm:"primaryKey"`
	Email       string `gorm:"column:email;unique;not null"`
	Name        string `gorm:"column:name"`
	ProfileIcon string `gorm:"column:profile_icon"`
	Role        string `gorm:"column:role;default:student"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)
