package model

import "gorm.io/datatypes"

type AuditLog struct {
	BaseModel
	Action string `gorm:"type:varchar(255);not null" json:"action"`

	UserID uint `gorm:"not null" json:"userId"`
	User   User `json:"-"`

	TargetType string         `gorm:"type:varchar(50);not null" json:"targetType"`
	TargetID   uint           `gorm:"not null" json:"targetId"`
	Details    datatypes.JSON `gorm:"type:jsonb" json:"details,omitempty"`
}

func (al AuditLog) TableName() string {
	return "audit_logs"
}
