package model

import "github.com/raven-med/radtag/internal/constant"

type User struct {
	BaseModel
	Email        string            `gorm:"unique;not null;type:citext" json:"email" form:"email" binding:"required"`
	PasswordHash string            `gorm:"type:text;not null" json:"-"`
	FirstName    string            `gorm:"type:varchar(255)" json:"firstName" form:"firstName"`
	LastName     string            `gorm:"type:varchar(255)" json:"lastName" form:"lastName"`
	Role         constant.UserRole `gorm:"type:varchar(50);default:user;not null" json:"role"`
	IsActive     bool              `gorm:"type:boolean;default:true" json:"isActive"`
}

func (u User) TableName() string {
	return "users"
}
