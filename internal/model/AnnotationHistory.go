package model

import (
	"time"

	"gorm.io/datatypes"
)

// AnnotationHistory is an immutable snapshot of an annotation's payload taken
// right before each update.
type AnnotationHistory struct {
	BaseModel
	AnnotationID uint       `gorm:"not null;index" json:"annotationId"`
	Annotation   Annotation `json:"-"`

	DataSnapshot datatypes.JSON `gorm:"type:jsonb;not null" json:"dataSnapshot"`

	ChangedBy     uint       `gorm:"not null" json:"changedBy"`
	ChangedByUser User       `gorm:"foreignKey:ChangedBy" json:"changedByUser,omitempty"`
	ChangedAt     *time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"changedAt"`
}

func (ah AnnotationHistory) TableName() string {
	return "annotation_history"
}
