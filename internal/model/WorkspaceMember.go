package model

import (
	"time"

	"github.com/raven-med/radtag/internal/constant"
)

type WorkspaceMember struct {
	BaseModel
	WorkspaceID uint                `gorm:"not null;uniqueIndex:idx_workspace_user" json:"workspaceId"`
	UserID      uint                `gorm:"not null;uniqueIndex:idx_workspace_user" json:"userId"`
	Role        constant.MemberRole `gorm:"type:varchar(50);default:member;not null" json:"role"`
	JoinedAt    *time.Time          `gorm:"default:CURRENT_TIMESTAMP" json:"joinedAt"`

	Workspace Workspace `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (wm WorkspaceMember) TableName() string {
	return "workspace_members"
}
