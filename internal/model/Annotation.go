package model

import (
	"github.com/raven-med/radtag/internal/constant"
	"gorm.io/datatypes"
)

// Annotation is a user-authored labeling record attached to one image. The
// canonical payload is the structured bounding-box list plus tags; there is no
// uniqueness constraint, so an image may carry several annotation rows from
// the same or different users.
type Annotation struct {
	BaseModel
	ImageID uint  `gorm:"not null;index" json:"imageId"`
	Image   Image `json:"-"`

	UserID uint `gorm:"not null" json:"userId"`
	User   User `gorm:"foreignKey:UserID" json:"user"`

	// Version is maintained by convention, not compared-and-swapped.
	Version int `gorm:"default:1;not null" json:"version"`

	BoundingBoxes datatypes.JSON `gorm:"type:jsonb;not null" json:"boundingBoxes"`
	Tags          datatypes.JSON `gorm:"type:jsonb" json:"tags,omitempty"`

	ReviewerID   *uint                 `json:"reviewerId"`
	Reviewer     *User                 `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	ReviewStatus constant.ReviewStatus `gorm:"type:varchar(50);default:pending;not null" json:"reviewStatus"`

	History []AnnotationHistory `gorm:"foreignKey:AnnotationID" json:"-"`
}

func (a Annotation) TableName() string {
	return "annotations"
}
