package model

import (
	"time"

	"github.com/raven-med/radtag/internal/constant"
)

type ProjectMember struct {
	BaseModel
	ProjectID uint                `gorm:"not null;uniqueIndex:idx_project_user" json:"projectId"`
	UserID    uint                `gorm:"not null;uniqueIndex:idx_project_user" json:"userId"`
	Role      constant.MemberRole `gorm:"type:varchar(50);default:member;not null" json:"role"`
	JoinedAt  *time.Time          `gorm:"default:CURRENT_TIMESTAMP" json:"joinedAt"`

	Project Project `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User    User    `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (pm ProjectMember) TableName() string {
	return "project_members"
}
