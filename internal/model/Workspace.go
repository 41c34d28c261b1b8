package model

type Workspace struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);not null" json:"name" form:"name" binding:"required"`
	Description string `gorm:"type:text" json:"description" form:"description"`

	OwnerID uint `gorm:"not null" json:"ownerId"`
	Owner   User `json:"owner"`

	Projects []Project `gorm:"constraint:OnDelete:CASCADE" json:"projects,omitempty"`
}

func (w Workspace) TableName() string {
	return "workspaces"
}
