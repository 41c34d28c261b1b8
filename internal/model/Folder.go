package model

// Folder is a tree node grouping images within a project. ParentFolderID nil
// means the folder sits at the project root. A parent must belong to the same
// project; direct self-parenting is rejected on update.
type Folder struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);not null;index:idx_folder_sibling" json:"name" form:"name" binding:"required"`
	Description string `gorm:"type:text" json:"description" form:"description"`

	ProjectID uint    `gorm:"not null;index:idx_folder_sibling" json:"projectId"`
	Project   Project `json:"-"`

	ParentFolderID *uint   `gorm:"index:idx_folder_sibling" json:"parentFolderId"`
	ParentFolder   *Folder `gorm:"foreignKey:ParentFolderID" json:"-"`

	Subfolders []Folder `gorm:"foreignKey:ParentFolderID" json:"subfolders,omitempty"`
	Images     []Image  `gorm:"foreignKey:FolderID" json:"images,omitempty"`
}

func (f Folder) TableName() string {
	return "folders"
}
