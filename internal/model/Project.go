package model

type Project struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);not null" json:"name" form:"name" binding:"required"`
	Description string `gorm:"type:text" json:"description" form:"description"`

	WorkspaceID uint      `gorm:"not null" json:"workspaceId"`
	Workspace   Workspace `json:"-"`

	OwnerID uint `gorm:"not null" json:"ownerId"`
	Owner   User `json:"owner"`

	Folders []Folder `gorm:"constraint:OnDelete:CASCADE" json:"folders,omitempty"`
	Images  []Image  `gorm:"constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

func (p Project) TableName() string {
	return "projects"
}
